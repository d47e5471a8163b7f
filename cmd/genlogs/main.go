package main

import (
	"flag"
	"fmt"
	"os"

	gen "github.com/Rudolph001/sqlsentry/internal/gen"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		configPath := genCmd.String("config", "", "Path to generator config file")
		genCmd.Parse(os.Args[2:])
		if *configPath == "" {
			fmt.Println("Error: --config is required for 'generate'")
			genCmd.Usage()
			os.Exit(1)
		}
		if err := gen.Generate(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "--help", "-h":
		printHelp()
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`Usage: genlogs <subcommand> --config <path>`)
	fmt.Println()
	fmt.Println("Subcommands:")
	fmt.Println("  generate  --config <path>   Generate a synthetic audit-log CSV")
	fmt.Println("  help                        Show this help message")
}
