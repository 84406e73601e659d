package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/Alehaaaa/camstool/internal/gimbal"
	"github.com/Alehaaaa/camstool/internal/memscene"
	"github.com/Alehaaaa/camstool/internal/plot"
)

func main() {
	scenePath := flag.String("scene", "", "Scene document to analyze")
	node := flag.String("node", "", "Node path to plot")
	outPath := flag.String("out", "gimbal.webp", "Output WebP path")
	width := flag.Int("width", 640, "Chart width in pixels")
	height := flag.Int("height", 240, "Chart height in pixels")
	flag.Parse()

	if *scenePath == "" || *node == "" {
		fmt.Fprintln(os.Stderr, "Usage: gimbalplot -scene scene.yaml -node |root|cam [-out gimbal.webp]")
		os.Exit(1)
	}

	sc, err := memscene.LoadFile(*scenePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}

	analyzer := gimbal.New(sc)
	times, traces, err := analyzer.History(*node)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sampling %s: %v\n", *node, err)
		os.Exit(1)
	}
	if len(traces) == 0 {
		fmt.Fprintf(os.Stderr, "No rotation order attribute on %s\n", *node)
		os.Exit(1)
	}

	labels := make([]string, 0, len(traces))
	for label := range traces {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	series := make([]plot.Series, 0, len(labels))
	for _, label := range labels {
		series = append(series, plot.Series{Label: label, Times: times, Scores: traces[label]})
	}

	img := plot.Chart(series, *width, *height)
	if err := plot.WriteWebP(*outPath, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d samples, %d orders)\n", *outPath, len(times), len(series))
}
