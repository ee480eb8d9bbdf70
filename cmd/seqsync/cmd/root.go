package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath   string
	envFile      string
	fdID         string
	intervention bool
	forceDB      bool
	noDB         bool
	noDBWrites   bool
	noMail       bool
	debug        bool
}

var flags rootFlags

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seqsync",
	Short: "Move sequencing datasets from the provider into the data catalog",
	Long: `seqsync runs one step of the sequencing data pipeline per invocation:

  stage     ask the provider to stage every New dataset
  transfer  submit Globus transfers for datasets the provider finished staging
  publish   post transferred files to the data catalog and archive them

Each step is meant to be run on a schedule. Two runs of the same step never
overlap; a second one is refused while the first holds its lock.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "config.json", "JSON pipeline config file")
	pf.StringVar(&flags.envFile, "env-file", "", "dotenv file holding credentials (default $SEQSYNC_DOTENV_PATH)")
	pf.StringVar(&flags.fdID, "fd-id", "", "run a single dataset identifier instead of the batch")
	pf.BoolVar(&flags.intervention, "intervention", false, "select rows in the Intervention stage")
	pf.BoolVar(&flags.forceDB, "force-db", false, "record the results of a --fd-id run in the database")
	pf.BoolVar(&flags.noDB, "no-db", false, "do not connect to the database")
	pf.BoolVar(&flags.noDBWrites, "no-db-writes", false, "read from the database but never write to it")
	pf.BoolVar(&flags.noMail, "no-mail", false, "do not send notifications")
	pf.BoolVar(&flags.debug, "debug", false, "log debug output")
}
