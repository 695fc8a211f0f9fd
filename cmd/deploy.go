package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/madelynarsenault/portfolio/internal/deploy"
	"github.com/madelynarsenault/portfolio/internal/logger"
)

var skipBuild bool

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Builds the site and uploads it to an S3-compatible bucket",
	Long: `The deploy command builds the site, then uploads the output directory to the
bucket configured under 'deploy' (AWS S3, or Cloudflare R2 / MinIO through
deploy.endpoint).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := deploy.New(ctx, appConfig.Deploy)
		if err != nil {
			return err
		}

		if !skipBuild {
			b, err := newBuilder(appConfig, siteData)
			if err != nil {
				return err
			}
			defer b.Close()
			if err := b.Build(ctx); err != nil {
				return err
			}
		} else if !isDir(appConfig.OutputDir) {
			return fmt.Errorf("output directory '%s' not found, run build first", appConfig.OutputDir)
		}

		res, err := d.Upload(ctx, appConfig.OutputDir)
		if err != nil {
			return err
		}
		logger.Info().Int("files", res.Files).Str("size", humanize.Bytes(uint64(res.Bytes))).
			Str("bucket", appConfig.Deploy.Bucket).Msg("site deployed")
		return nil
	},
}

func init() {
	deployCmd.Flags().BoolVar(&skipBuild, "skip-build", false, "upload the existing output directory without rebuilding")
	rootCmd.AddCommand(deployCmd)
}
