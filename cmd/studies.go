package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/diffevo/internal/de"
	"github.com/cwbudde/diffevo/internal/report"
	"github.com/cwbudde/diffevo/internal/store"
)

var studiesDataDir string

var studiesCmd = &cobra.Command{
	Use:   "studies",
	Short: "Manage persisted study records",
	Long: `List, inspect and delete study records saved by 'run --save' or the
HTTP service.`,
}

var listStudiesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored studies",
	RunE:  runListStudies,
}

var showStudyCmd = &cobra.Command{
	Use:   "show [study-id]",
	Short: "Show the per-run results of a stored study",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowStudy,
}

var rmStudyCmd = &cobra.Command{
	Use:   "rm [study-id]",
	Short: "Delete a stored study and its trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoveStudy,
}

func init() {
	rootCmd.AddCommand(studiesCmd)
	studiesCmd.AddCommand(listStudiesCmd)
	studiesCmd.AddCommand(showStudyCmd)
	studiesCmd.AddCommand(rmStudyCmd)

	studiesCmd.PersistentFlags().StringVar(&studiesDataDir, "data-dir", "./data", "Base directory for study records")
}

func openStore() (*store.FSStore, error) {
	fsStore, err := store.NewFSStore(studiesDataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return fsStore, nil
}

func runListStudies(cmd *cobra.Command, args []string) error {
	fsStore, err := openStore()
	if err != nil {
		return err
	}

	infos, err := fsStore.ListRecords()
	if err != nil {
		return fmt.Errorf("failed to list studies: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No studies found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDY ID\tOBJECTIVE\tRUNS\tDIM\tBEST FITNESS\tCREATED")
	fmt.Fprintln(w, "--------\t---------\t----\t---\t------------\t-------")

	for _, info := range infos {
		displayID := info.StudyID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.6g\t%s\n",
			displayID,
			info.Objective,
			info.Runs,
			info.Dim,
			info.BestFitness,
			info.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	w.Flush()

	fmt.Printf("\nTotal studies: %d\n", len(infos))
	return nil
}

func runShowStudy(cmd *cobra.Command, args []string) error {
	fsStore, err := openStore()
	if err != nil {
		return err
	}

	record, err := fsStore.LoadRecord(args[0])
	if err != nil {
		return fmt.Errorf("failed to load study: %w", err)
	}

	result := &de.Result{Runs: record.Runs}
	report.WriteTable(os.Stdout, record.Config.Objective, result)

	fmt.Printf("\nStudy %s  (created %s, seed %d, F=%g, CR=%g)\n",
		record.StudyID,
		record.CreatedAt.Format("2006-01-02 15:04:05"),
		record.Config.Seed,
		record.Config.F,
		record.Config.CR,
	)
	return nil
}

func runRemoveStudy(cmd *cobra.Command, args []string) error {
	fsStore, err := openStore()
	if err != nil {
		return err
	}

	if err := fsStore.DeleteRecord(args[0]); err != nil {
		return fmt.Errorf("failed to delete study: %w", err)
	}

	fmt.Printf("Deleted study %s\n", args[0])
	return nil
}
