package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rudolph001/sqlsentry/internal/sentry/risk"
)

var explainCmd = &cobra.Command{
	Use:   "explain <statement>",
	Short: "Explain a SQL statement in plain English",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		statement := strings.Join(args, " ")
		fmt.Println(risk.Explain(statement))
	},
}
