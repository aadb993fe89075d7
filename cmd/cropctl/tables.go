package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Goopi7/crop-connect/internal/recommendation"
)

func newTablesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the reference tables as YAML",
		Long: `Print the soil compatibility, season, region climate, budget tier and crop
complexity tables. With --tables the file is overlaid on the defaults first,
which makes this a quick validity check for a custom tables file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := recommendation.LoadTables(v.GetString("tables.file"))
			if err != nil {
				return err
			}
			out, err := tables.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().String("tables", "", "YAML file overlaid on the default tables")
	_ = v.BindPFlag("tables.file", cmd.Flags().Lookup("tables"))
	return cmd
}
