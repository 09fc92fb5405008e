package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/cx/internal/config"
	"github.com/anthropics/cx/internal/cst"
	"github.com/anthropics/cx/internal/cst/selector"
	"github.com/anthropics/cx/internal/cstfrontend"
	"github.com/anthropics/cx/internal/cststore"
	"github.com/anthropics/cx/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cstCmd is the parent for the syntax-tree subcommands.
var cstCmd = &cobra.Command{
	Use:   "cst",
	Short: "Build and query lossless concrete syntax trees",
	Long: `Build and query lossless concrete syntax trees from a C++ source subset.

A concrete syntax tree holds every token of the input as a leaf, so it
can be edited and re-printed token by token. Comments and whitespace are
skipped by the lexer and are not part of the tree.

Examples:
  cx cst build main.cpp                                    # build and record a tree
  cx cst build main.cpp --query 'kind(root(), "IfStatement")'  # build and query it
  cx cst history main.cpp                                  # show recent builds`,
}

var cstQuery string

func init() {
	rootCmd.AddCommand(cstCmd)
	cstCmd.AddCommand(cstBuildCmd)
	cstCmd.AddCommand(cstHistoryCmd)

	cstBuildCmd.Flags().StringVar(&cstQuery, "query", "", "Range-selector expression to evaluate against the built tree")
}

var cstBuildCmd = &cobra.Command{
	Use:   "build <path>",
	Short: "Build a syntax tree from a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCSTBuild,
}

var cstHistoryCmd = &cobra.Command{
	Use:   "history <path>",
	Short: "Show recent build history for a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCSTHistory,
}

func runCSTBuild(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cstfrontend.ValidateGrammarSubset(cfg.CST.GrammarSubset); err != nil {
		return err
	}

	cxDir, err := config.FindConfigDir(".")
	if err != nil {
		return fmt.Errorf("cx not initialized: run 'cx init' first")
	}
	storeDB, err := store.Open(cxDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer storeDB.Close()
	recorder := cststore.NewRecorder(storeDB)

	builtAt := time.Now().Unix()
	tu, tokens, err := cstfrontend.Translate(src)
	if err != nil {
		if _, recErr := recorder.RecordFailure(path, src, err, builtAt); recErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record build failure: %v\n", recErr)
		}
		return fmt.Errorf("translate: %w", err)
	}

	tree, err := cst.Build(cst.NewArena(len(tokens)), tu, tokens)
	if err != nil {
		if _, recErr := recorder.RecordFailure(path, src, err, builtAt); recErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record build failure: %v\n", recErr)
		}
		return fmt.Errorf("build: %w", err)
	}

	buildID, err := recorder.RecordSuccess(path, src, tree, len(tokens), builtAt)
	if err != nil {
		return fmt.Errorf("recording build: %w", err)
	}

	if cfg.CST.DumpTree {
		cst.Dump(os.Stderr, tree.Root())
	}

	result := map[string]interface{}{
		"build_id":    buildID,
		"path":        path,
		"root_kind":   tree.Root().Kind().String(),
		"token_count": len(tokens),
		"node_count":  countNodes(tree.Root()),
	}

	if cstQuery != "" {
		nodes, err := selector.Eval(tree.Root(), cstQuery)
		if err != nil {
			return fmt.Errorf("selector query: %w", err)
		}
		matches := make([]map[string]interface{}, 0, len(nodes))
		for _, n := range nodes {
			matches = append(matches, map[string]interface{}{
				"kind":        n.Kind().String(),
				"role":        n.Role().String(),
				"first_token": int(n.FirstToken()),
				"last_token":  int(n.LastToken()),
			})
		}
		result["query"] = cstQuery
		result["matches"] = matches
	}

	return printResult(result)
}

func runCSTHistory(cmd *cobra.Command, args []string) error {
	path := args[0]

	cxDir, err := config.FindConfigDir(".")
	if err != nil {
		return fmt.Errorf("cx not initialized: run 'cx init' first")
	}
	storeDB, err := store.Open(cxDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer storeDB.Close()
	recorder := cststore.NewRecorder(storeDB)

	summaries, err := recorder.RecentBuilds(path, 20)
	if err != nil {
		return fmt.Errorf("querying build history: %w", err)
	}

	return printResult(map[string]interface{}{
		"path":   path,
		"builds": summaries,
		"count":  len(summaries),
	})
}

func printResult(v interface{}) error {
	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func countNodes(n *cst.Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children() {
		total += countNodes(c)
	}
	return total
}
