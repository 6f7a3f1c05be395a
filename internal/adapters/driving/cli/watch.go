package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dataset|location...]",
	Short: "Reload file-backed datasets when they change",
	Long: `Loads the given datasets (or every dataset in the [datasets] table of
config.toml) and reloads each file-backed one when its file is written or
replaced. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if loaderService == nil {
		return errNotConfigured
	}
	ctx := commandContext(cmd)

	locations := datasetLocations(args)
	if len(locations) == 0 {
		return errors.New("nothing to watch: pass locations or configure [datasets]")
	}

	infos, err := loaderService.LoadAll(ctx, locations)
	if err != nil {
		return err
	}
	for _, info := range infos {
		cmd.Printf("Loaded %s: %d rows from %s\n", info.Name, info.Rows, info.Location)
	}
	cmd.Println("Watching for changes; press Ctrl+C to stop.")

	err = loaderService.Watch(ctx)
	if err != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}
