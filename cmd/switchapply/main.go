package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Alehaaaa/camstool/internal/apply"
	"github.com/Alehaaaa/camstool/internal/config"
	"github.com/Alehaaaa/camstool/internal/discovery"
	"github.com/Alehaaaa/camstool/internal/memscene"
	"github.com/Alehaaaa/camstool/internal/spaceswitch"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing camstool.yaml")
	scenePath := flag.String("scene", "", "Scene document to modify")
	outPath := flag.String("out", "", "Output path (default: overwrite -scene)")
	attrName := flag.String("attr", "", "Switch attribute name")
	option := flag.String("to", "", "Option label to switch to")
	allFrames := flag.Bool("all-frames", false, "Bake across every keyed frame")
	start := flag.Float64("start", 0, "Bake interval start (requires -end)")
	end := flag.Float64("end", 0, "Bake interval end")
	flag.Parse()

	if *scenePath == "" || *attrName == "" || *option == "" {
		fmt.Fprintln(os.Stderr, "Usage: switchapply -scene scene.yaml -attr space -to World [nodes...]")
		os.Exit(1)
	}

	settings, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(settings.LogLevel)

	sc, err := memscene.LoadFile(*scenePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}

	nodes := flag.Args()
	if len(nodes) == 0 {
		nodes = sc.Selection()
	}
	if len(nodes) == 0 {
		nodes = sc.Nodes()
	}

	tool := spaceswitch.New(sc, settings, log, nil, nil)
	groups, err := tool.Discover(nodes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Discovery error: %v\n", err)
		os.Exit(1)
	}

	var group *discovery.SwitchGroup
	for _, g := range groups {
		if g.AttributeName == *attrName {
			group = g
			break
		}
	}
	if group == nil {
		fmt.Fprintf(os.Stderr, "No switch named %q on the given nodes\n", *attrName)
		os.Exit(1)
	}

	var interval *apply.Interval
	if flagSet("start") || flagSet("end") {
		interval = &apply.Interval{Start: *start, End: *end}
	}
	var all *bool
	if flagSet("all-frames") {
		all = allFrames
	}

	result, err := tool.Apply(group, *option, all, interval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Apply error: %v\n", err)
		os.Exit(1)
	}
	for _, w := range result.Warnings {
		log.Warn().Msg(w)
	}
	fmt.Printf("Switched %s to %q on %d node(s)\n", *attrName, *option, result.AppliedCount)

	dst := *outPath
	if dst == "" {
		dst = *scenePath
	}
	if err := sc.SaveFile(dst); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving scene: %v\n", err)
		os.Exit(1)
	}
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).With().Timestamp().Logger()
}
