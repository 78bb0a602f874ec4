// Command cachesim runs a layered cache simulation over a memory-access
// trace and prints the resulting hit/miss counters as pretty-printed JSON.
//
// Usage:
//
//	cachesim [-performance] [-debug] <config.json> <trace.out>
//
// The process exits zero on success; on any error it prints a single
// descriptive line naming the failing stage and exits non-zero.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	cachesim "github.com/joeycumines/go-cachesim"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	start := time.Now()

	flags := flag.NewFlagSet(`cachesim`, flag.ExitOnError)
	performance := flags.Bool(`performance`, false, `output performance statistics`)
	debug := flags.Bool(`debug`, false, `output debug information`)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: cachesim [flags] <config.json> <trace.out>\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return fmt.Errorf(`cachesim: expected a config path and a trace path, got %d arguments`, flags.NArg())
	}
	configPath, tracePath := flags.Arg(0), flags.Arg(1)

	level := logiface.LevelInformational
	if *debug {
		level = logiface.LevelDebug
	}
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
		stumpy.L.WithLevel(level),
	)

	configFile, err := os.Open(configPath)
	if err != nil {
		return fmt.Errorf(`cachesim: couldn't open the config file at path %s: %w`, configPath, err)
	}
	config, err := cachesim.ReadConfig(configFile)
	_ = configFile.Close()
	if err != nil {
		return err
	}

	simulator, err := cachesim.NewSimulator(config, cachesim.WithLogger(logger.Logger()))
	if err != nil {
		return err
	}

	trace, err := cachesim.OpenTrace(tracePath)
	if err != nil {
		return err
	}
	defer trace.Close()

	result, err := simulator.Simulate(trace.Data)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, ``, `  `)
	if err != nil {
		return fmt.Errorf(`cachesim: couldn't serialise the output: %w`, err)
	}
	fmt.Println(string(out))

	if *performance {
		logger.Info().
			Dur(`simulation_time`, simulator.ExecutionTime()).
			Dur(`total_time`, time.Since(start)).
			Log(`performance statistics (total includes parsing, configuration, and output)`)
	}
	if *debug {
		counts := simulator.UninitialisedLineCounts()
		var total uint64
		parts := make([]string, 0, len(counts))
		for i, count := range counts {
			total += count
			parts = append(parts, fmt.Sprintf(`%s: %d`, config.Caches[i].Name, count))
		}
		logger.Debug().
			Str(`by_layer`, strings.Join(parts, `, `)).
			Uint64(`total`, total).
			Log(`uninitialised cache lines`)
	}
	return nil
}
