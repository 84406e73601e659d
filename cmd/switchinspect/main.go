package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alehaaaa/camstool/internal/config"
	"github.com/Alehaaaa/camstool/internal/discovery"
	"github.com/Alehaaaa/camstool/internal/memscene"
	"github.com/Alehaaaa/camstool/internal/spaceswitch"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing camstool.yaml")
	scenePath := flag.String("scene", "", "Scene document to inspect")
	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: switchinspect -scene scene.yaml [nodes...]")
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
	if len(groups) == 0 {
		fmt.Println("No valid switches found.")
		return
	}

	for _, g := range groups {
		members := g.MemberNodes()
		fmt.Printf("\n=== %s (%s, %d node(s)) ===\n", g.AttributeName, g.DisplayLabel, len(members))
		index := g.OptionIndex()
		for _, opt := range g.Options() {
			entry := index[opt]
			fmt.Printf("  %-24s targets=%d%s\n", opt, len(entry.TargetNodes), optionMarks(g, entry))
		}
		for _, node := range members {
			sa := g.Members[node]
			if len(sa.Gimbal) == 0 {
				continue
			}
			fmt.Printf("  gimbal %s:\n", displayName(node, settings.NamespaceDisplay))
			for _, opt := range sa.Options {
				e := sa.Gimbal[opt]
				tier := e.Tier
				if tier != "" {
					tier = " (" + tier + ")"
				}
				fmt.Printf("    %-6s %3d%s\n", opt, e.Score, tier)
			}
		}
	}
}

// optionMarks annotates an option that is active or keyed on a member.
func optionMarks(g *discovery.SwitchGroup, entry discovery.OptionEntry) string {
	var current, keyed bool
	for _, node := range entry.TargetNodes {
		sa := g.Members[node]
		idx := entry.LocalIndex[node]
		if sa.CurrentValue == idx {
			current = true
		}
		if _, ok := sa.MarkedValues[idx]; ok {
			keyed = true
		}
	}
	switch {
	case current && keyed:
		return "  [current, keyed]"
	case current:
		return "  [current]"
	case keyed:
		return "  [keyed]"
	}
	return ""
}

func displayName(path string, namespaces bool) string {
	name := path[strings.LastIndex(path, "|")+1:]
	if !namespaces {
		if i := strings.LastIndex(name, ":"); i >= 0 {
			name = name[i+1:]
		}
	}
	return name
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).With().Timestamp().Logger()
}
