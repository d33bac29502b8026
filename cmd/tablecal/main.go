package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tablecal/internal/config"
	"tablecal/internal/ics"
	"tablecal/internal/preset"
	"tablecal/internal/table"
	"tablecal/internal/weekview"
	"tablecal/internal/xlsx"
)

var rootCmd = &cobra.Command{
	Use:   "tablecal",
	Short: "Turn timetable spreadsheets into calendars",
	Long:  "tablecal reads a timetabling Excel workbook, applies mapping and filter templates, and produces iCalendar files and weekly-view workbooks.",
}

var exportCmd = &cobra.Command{
	Use:   "export <workbook.xlsx> [filters.json]",
	Short: "Export a workbook to iCalendar files and optional weekly views",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runExport,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in mapping and filter presets",
	RunE:  runPresets,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	f := exportCmd.Flags()
	f.String("mapping", "", "Path to the JSON mapping file (default: bundled mapping template)")
	f.String("mapping-preset", "", "Built-in mapping preset name (see 'tablecal presets')")
	f.String("filters", "", "Path to the JSON filters file")
	f.String("filters-preset", "", "Built-in filters preset name (see 'tablecal presets')")
	f.Bool("exact", false, "Use exact matching for filters")
	f.String("timezone", "", "Timezone for the events (default: from config)")
	f.String("company", "", "PRODID owner for generated calendars (default: from config)")
	f.String("output-dir", "", "Directory for output iCal files (default: filters output_dir, then config)")
	f.String("sheet", "", "Worksheet to read (default: first sheet)")
	f.Bool("week-view", false, "Generate a weekly view workbook")
	f.String("week-view-output", "", "Weekly view output path; with multiple calendars, .xlsx means one workbook with a sheet per calendar, anything else is a directory")
	f.String("week-view-template", "", "Path to the weekly view template JSON (default: bundled template)")
	f.String("week-view-calendar", "", "Generate the weekly view for a single calendar filename")
	f.String("skip-transforms", "", "Comma-separated transform names to skip (e.g. expand_dates)")
	f.Bool("debug", false, "Enable debug logging")
	exportCmd.MarkFlagsMutuallyExclusive("mapping", "mapping-preset")
	exportCmd.MarkFlagsMutuallyExclusive("filters", "filters-preset")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// calendarSpec is one entry of the filters file's "calendars" list.
type calendarSpec struct {
	Filename string
	Filter   map[string]any
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	debug, _ := cmd.Flags().GetBool("debug")
	setupLogger(debug || cfg.Debug)

	store := preset.NewStore(cfg.Export.DataDir)

	mapping, err := loadMapping(cmd, store)
	if err != nil {
		return err
	}
	filters, err := loadFilters(cmd, args, store)
	if err != nil {
		return err
	}

	timezone, _ := cmd.Flags().GetString("timezone")
	if timezone == "" {
		timezone = cfg.Export.Timezone
	}
	company, _ := cmd.Flags().GetString("company")
	if company == "" {
		company = stringValue(mapping, "company")
	}
	if company == "" {
		company = cfg.Export.Company
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir == "" {
		outputDir = stringValue(filters, "output_dir")
	}
	if outputDir == "" {
		outputDir = cfg.Export.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	sheet, _ := cmd.Flags().GetString("sheet")
	tbl, err := xlsx.ReadTable(args[0], sheet)
	if err != nil {
		return err
	}
	slog.Debug("workbook loaded", "path", args[0], "rows", tbl.Len())

	exact, _ := cmd.Flags().GetBool("exact")
	if global, ok := filters["global_filters"].(map[string]any); ok && len(global) > 0 {
		tbl, err = tbl.Filter(global, exact)
		if err != nil {
			return fmt.Errorf("applying global filters: %w", err)
		}
	}
	if tbl.Empty() {
		fmt.Println("No data found after applying global filters. Exiting.")
		return nil
	}

	skipTransforms, _ := cmd.Flags().GetString("skip-transforms")
	tbl, err = applyTransforms(tbl, mapping, skipTransforms)
	if err != nil {
		return err
	}

	columns, err := mappingColumns(mapping)
	if err != nil {
		return err
	}
	gen, err := ics.NewGenerator(columns, timezone, company)
	if err != nil {
		return err
	}

	calendars, err := calendarSpecs(filters)
	if err != nil {
		return err
	}

	weekView, _ := cmd.Flags().GetBool("week-view")
	weekViewOutput, _ := cmd.Flags().GetString("week-view-output")
	if weekViewOutput == "" {
		weekViewOutput = stringValue(filters, "week_view_output")
	}
	if weekView || weekViewOutput != "" {
		template, err := loadWeekViewTemplate(cmd, store, filters)
		if err != nil {
			return err
		}
		if weekViewOutput == "" {
			weekViewOutput = filepath.Join(outputDir, "week_view.xlsx")
		}
		selected, _ := cmd.Flags().GetString("week-view-calendar")
		if err := exportWeekViews(tbl, template, calendars, weekViewOutput, selected, exact); err != nil {
			return err
		}
	}

	return exportCalendars(gen, tbl, calendars, outputDir, exact)
}

func loadMapping(cmd *cobra.Command, store *preset.Store) (map[string]any, error) {
	if name, _ := cmd.Flags().GetString("mapping-preset"); name != "" {
		return store.Load(name + ".mapping.json")
	}
	path, _ := cmd.Flags().GetString("mapping")
	if path == "" {
		path = store.DefaultMappingPath()
	}
	return preset.LoadFile(path)
}

func loadFilters(cmd *cobra.Command, args []string, store *preset.Store) (map[string]any, error) {
	path, _ := cmd.Flags().GetString("filters")
	if path == "" && len(args) > 1 {
		path = args[1]
	}
	name, _ := cmd.Flags().GetString("filters-preset")
	switch {
	case name != "" && path != "":
		return nil, fmt.Errorf("provide either a filters JSON file or --filters-preset, not both")
	case name != "":
		return store.Load(name + ".filters.json")
	case path != "":
		return preset.LoadFile(path)
	default:
		return map[string]any{}, nil
	}
}

func loadWeekViewTemplate(cmd *cobra.Command, store *preset.Store, filters map[string]any) (map[string]any, error) {
	path, _ := cmd.Flags().GetString("week-view-template")
	if path == "" {
		path = stringValue(filters, "week_view_template")
	}
	if path != "" {
		return preset.LoadFile(path)
	}
	return store.Load("week_view.template.json")
}

// applyTransforms runs the mapping's transform pipeline in order, skipping
// any named in the comma-separated skip list.
func applyTransforms(tbl *table.Table, mapping map[string]any, skip string) (*table.Table, error) {
	skipped := make(map[string]bool)
	for _, name := range strings.Split(skip, ",") {
		if name = strings.TrimSpace(name); name != "" {
			skipped[name] = true
		}
	}

	specs, ok := mapping["transforms"].([]any)
	if !ok {
		return tbl, nil
	}
	for _, raw := range specs {
		spec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("transform entries must be objects with a name")
		}
		name := stringValue(spec, "name")
		if name == "" {
			return nil, fmt.Errorf("transform entry is missing a name")
		}
		if skipped[name] {
			slog.Debug("skipping transform", "name", name)
			continue
		}

		args := table.Args{}
		if list, ok := spec["args"].([]any); ok {
			args.Args = list
		}
		if kwargs, ok := spec["kwargs"].(map[string]any); ok {
			args.Kwargs = kwargs
		}

		out, err := tbl.Transform(name, args)
		if err != nil {
			return nil, err
		}
		slog.Debug("applied transform", "name", name, "rows", out.Len())
		tbl = out
	}
	return tbl, nil
}

func stringValue(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func mappingColumns(mapping map[string]any) (map[string]string, error) {
	raw, ok := mapping["columns"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("mapping is missing a columns object")
	}
	columns := make(map[string]string, len(raw))
	for field, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("mapping column %q must name a worksheet column", field)
		}
		columns[field] = s
	}
	return columns, nil
}

func calendarSpecs(filters map[string]any) ([]calendarSpec, error) {
	raw, ok := filters["calendars"].([]any)
	if !ok {
		return nil, nil
	}
	specs := make([]calendarSpec, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("calendars[%d] must be an object", i)
		}
		spec := calendarSpec{Filename: stringValue(m, "filename")}
		if spec.Filename == "" {
			return nil, fmt.Errorf("calendars[%d] is missing a filename", i)
		}
		if f, ok := m["filter"].(map[string]any); ok {
			spec.Filter = f
		}
		if spec.Filter == nil {
			return nil, fmt.Errorf("calendars[%d] is missing a filter", i)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func exportCalendars(gen *ics.Generator, tbl *table.Table, calendars []calendarSpec, outputDir string, exact bool) error {
	if len(calendars) == 0 {
		return writeCalendar(gen, tbl, filepath.Join(outputDir, "timetable.ics"))
	}
	for _, cal := range calendars {
		filtered, err := tbl.Filter(cal.Filter, exact)
		if err != nil {
			return fmt.Errorf("calendar %s: %w", cal.Filename, err)
		}
		if err := writeCalendar(gen, filtered, filepath.Join(outputDir, cal.Filename+".ics")); err != nil {
			return err
		}
	}
	return nil
}

func writeCalendar(gen *ics.Generator, tbl *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := gen.Write(f, tbl); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	slog.Info("calendar written", "path", path)
	return nil
}

// exportWeekViews renders weekly view workbooks. With multiple calendars the
// output path decides the shape: a .xlsx path gets one workbook with a sheet
// per calendar, anything else is treated as a directory with one workbook
// per calendar.
func exportWeekViews(tbl *table.Table, template map[string]any, calendars []calendarSpec, outputPath, selected string, exact bool) error {
	renderFor := func(filter map[string]any) (*weekview.Grid, error) {
		view := tbl
		if filter != nil {
			var err error
			view, err = tbl.Filter(filter, exact)
			if err != nil {
				return nil, err
			}
		}
		grid, err := weekview.Render(view.Rows, template)
		if err != nil {
			return nil, err
		}
		if grid.SkippedRows > 0 {
			slog.Debug("weekly view skipped rows", "count", grid.SkippedRows)
		}
		return grid, nil
	}

	writeSingle := func(filter map[string]any) error {
		grid, err := renderFor(filter)
		if err != nil {
			return err
		}
		w := xlsx.NewWriter()
		if err := w.AddGrid("Weekly Schedule", grid); err != nil {
			return err
		}
		if err := w.Save(outputPath); err != nil {
			return err
		}
		slog.Info("weekly view written", "path", outputPath)
		return nil
	}

	if selected != "" {
		for _, cal := range calendars {
			if cal.Filename == selected {
				return writeSingle(cal.Filter)
			}
		}
		return fmt.Errorf("calendar not found for weekly view: %s", selected)
	}

	switch len(calendars) {
	case 0:
		return writeSingle(nil)
	case 1:
		return writeSingle(calendars[0].Filter)
	}

	if strings.EqualFold(filepath.Ext(outputPath), ".xlsx") {
		w := xlsx.NewWriter()
		used := make(map[string]bool)
		for _, cal := range calendars {
			grid, err := renderFor(cal.Filter)
			if err != nil {
				return fmt.Errorf("calendar %s: %w", cal.Filename, err)
			}
			if err := w.AddGrid(xlsx.SafeSheetTitle(cal.Filename, used), grid); err != nil {
				return err
			}
		}
		if err := w.Save(outputPath); err != nil {
			return err
		}
		slog.Info("weekly view written", "path", outputPath)
		return nil
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return fmt.Errorf("creating weekly view directory: %w", err)
	}
	for _, cal := range calendars {
		grid, err := renderFor(cal.Filter)
		if err != nil {
			return fmt.Errorf("calendar %s: %w", cal.Filename, err)
		}
		w := xlsx.NewWriter()
		if err := w.AddGrid("Weekly Schedule", grid); err != nil {
			return err
		}
		out := filepath.Join(outputPath, cal.Filename+".xlsx")
		if err := w.Save(out); err != nil {
			return err
		}
		slog.Info("weekly view written", "path", out)
	}
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store := preset.NewStore(cfg.Export.DataDir)
	mappings, filters, err := store.List()
	if err != nil {
		return err
	}

	header := color.New(color.Bold)
	header.Println("Mapping presets:")
	for _, name := range mappings {
		fmt.Printf("  - %s\n", name)
	}
	header.Println("Filters presets:")
	for _, name := range filters {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	edit := exec.Command(editor, configPath)
	edit.Stdin = os.Stdin
	edit.Stdout = os.Stdout
	edit.Stderr = os.Stderr
	return edit.Run()
}
