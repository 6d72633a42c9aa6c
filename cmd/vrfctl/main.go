package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edvin/routemanager/internal/vrfctl"
)

const defaultAPI = "http://localhost:8000"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "generate":
		fs := flag.NewFlagSet("generate", flag.ExitOnError)
		apiURL := fs.String("api", defaultAPI, "Route API base URL")
		numVRFs := fs.Int("num-vrfs", 5, "Number of VRFs to create")
		namespace := fs.String("namespace", "default", "Namespace for the VRFs")
		imports := fs.Int("imports", 2, "Import route targets per VRF")
		exports := fs.Int("exports", 2, "Export route targets per VRF")
		prefixes := fs.Int("prefixes", 3, "Prefixes per VRF")
		concurrency := fs.Int("concurrency", 4, "VRFs generated in parallel")
		seed := fs.Uint64("seed", 0, "Random seed (0 picks one)")
		fs.Parse(os.Args[2:])

		g := vrfctl.NewGenerator(vrfctl.NewClient(*apiURL), os.Stdout, *seed)
		_, err := g.Run(ctx, vrfctl.GenerateOptions{
			NumVRFs:     *numVRFs,
			Namespace:   *namespace,
			Imports:     *imports,
			Exports:     *exports,
			Prefixes:    *prefixes,
			Concurrency: *concurrency,
		})
		exitOnError(err)

	case "seed":
		fs := flag.NewFlagSet("seed", flag.ExitOnError)
		file := fs.String("f", "", "Path to seed definition YAML file (required)")
		apiURL := fs.String("api", "", "Route API base URL (overrides api_url in the file)")
		fs.Parse(os.Args[2:])

		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}

		cfg, err := vrfctl.LoadSeedConfig(*file)
		exitOnError(err)

		url := *apiURL
		if url == "" {
			url = cfg.APIURL
		}
		if url == "" {
			url = defaultAPI
		}
		exitOnError(vrfctl.Seed(ctx, vrfctl.NewClient(url), cfg, os.Stdout))

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		apiURL := fs.String("api", defaultAPI, "Route API base URL")
		namespace := fs.String("namespace", "", "Only list VRFs in this namespace")
		fs.Parse(os.Args[2:])

		exitOnError(vrfctl.List(ctx, vrfctl.NewClient(*apiURL), *namespace, os.Stdout))

	case "leak":
		fs := flag.NewFlagSet("leak", flag.ExitOnError)
		apiURL := fs.String("api", defaultAPI, "Route API base URL")
		from := fs.String("from", "", "Source VRF, namespace/name (required)")
		to := fs.String("to", "", "Destination VRF, namespace/name (required)")
		revoke := fs.Bool("revoke", false, "Remove the leaked import instead of adding it")
		fs.Parse(os.Args[2:])

		if *from == "" || *to == "" {
			fmt.Fprintln(os.Stderr, "Error: -from and -to are required")
			fs.Usage()
			os.Exit(1)
		}

		_, err := vrfctl.Leak(ctx, vrfctl.NewClient(*apiURL), *from, *to, *revoke, os.Stdout)
		exitOnError(err)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  vrfctl generate [-api URL] [-num-vrfs N] [-namespace NS] [-imports N] [-exports N] [-prefixes N]
  vrfctl seed -f <vrfs.yaml> [-api URL]
  vrfctl list [-api URL] [-namespace NS]
  vrfctl leak -from <ns/name> -to <ns/name> [-revoke] [-api URL]

Commands:
  generate   Create random sample VRFs with route targets and prefixes
  seed       Create VRFs, route targets and prefixes from a YAML definition
  list       Print VRFs as a table
  leak       Make one VRF import the first export RT of another

Flags:
  -api string   Route API base URL (default: http://localhost:8000)`)
}
