/*
Copyright © 2018 the TLGrav authors.
This file is part of TLGrav.

TLGrav is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TLGrav is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TLGrav.  If not, see <http://www.gnu.org/licenses/>.
*/


package tlgravutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/tlgrav"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to TLGrav.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GridFile",
			usage: `
              GridFile is the path to the NetCDF file holding the simulation
              grid: the variables ACTNUM, XCENT, YCENT, and ZCENT. It can
              be a local path or an http(s) URL.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "InitFile",
			usage: `
              InitFile is the path to the NetCDF initialization dataset,
              which holds the initial pore volume (PORV), the PVT region
              numbers (PVTNUM) and, optionally, the aquifer flags (AQUIFERN).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "Method",
			usage: `
              Method is the fluid mass method used to build surveys. It can be
              FIP (fluid in place times standard density), RFIP (reservoir fluid
              in place times reservoir density), RPORV (restart pore volume times
              saturation times reservoir density), or PORMOD (initial pore
              volume times pore volume multiplier times saturation times
              reservoir density).`,
			shorthand:  "m",
			defaultVal: "FIP",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "Surveys",
			usage: `
              Surveys maps survey names to the paths of the NetCDF restart
              datasets they are built from. When set from the command line, it
              must be a JSON object, e.g. '{"2010":"restart_2010.ncf"}'.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "StdDensity",
			usage: `
              StdDensity maps phase names (oil, gas, water) to their standard
              (surface) densities in kg/m³. It is used by the FIP method.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "DensityOverrides",
			usage: `
              DensityOverrides maps keys in the form 'phase:region' to the
              standard density of the phase in that PVT region, in kg/m³.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "Pairs",
			usage: `
              Pairs is a list of survey pairs in the form 'base:monitor'. The
              gravity change from base to monitor is calculated for each pair.
              An empty monitor ('base:') compares base against no fluid.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{evalCmd.Flags()},
		},
		{
			name: "PhaseMask",
			usage: `
              PhaseMask selects the phases that contribute to gravity changes,
              e.g. 'all', 'oil', or 'gas+water'.`,
			defaultVal: "all",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags()},
		},
		{
			name: "StationsFile",
			usage: `
              StationsFile is a point shapefile of gravity stations with the
              attribute fields Name, Depth (m, positive downwards), and
              optionally Observed (µGal).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags()},
		},
		{
			name: "GridProj",
			usage: `
              GridProj is the spatial reference of the grid, in PROJ4 or WKT
              format. If it is set, stations are reprojected to it and it is
              written as the spatial reference of the output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the point shapefile results are written
              to. If it is empty, results are only printed.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables maps output field names to expressions of the
              variables Oil, Gas, Water, Total, Observed, and Depth. Field
              names can be at most 10 characters long. The default is the
              change from each phase and the total.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{evalCmd.Flags()},
		},
		{
			name: "ResultsDB",
			usage: `
              ResultsDB is the path of a SQLite database that results are
              saved to, along with a record of the run. If it is empty, results
              are not saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags()},
		},
		{
			name: "PorvCheck",
			usage: `
              PorvCheck specifies what happens when the restart pore volumes
              used by the RPORV method fail the comparison against the initial
              pore volumes: 'fail', 'warn', or 'skip'.`,
			defaultVal: "fail",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "ReplaceSurveys",
			usage: `
              ReplaceSurveys specifies whether a survey added with the name of
              an existing survey replaces it instead of causing an error.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "Seed",
			usage: `
              Seed is the random number seed for choosing the cells checked
              by the pore volume comparison.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If it is empty and OutputFile is
              set, the log is written next to the output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{evalCmd.Flags(), surveysCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages: debug, info,
              warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TLGRAV")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
			case bool:
				set.Bool(option.name, option.defaultVal.(bool), option.usage)
			case int:
				set.Int(option.name, option.defaultVal.(int), option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				set.String(option.name, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(evalCmd)
	Root.AddCommand(surveysCmd)
	Root.AddCommand(keywordsCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("tlgrav: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "tlgrav",
	Short: "Time-lapse gravity responses of reservoir simulations.",
	Long: `TLGrav calculates the change in gravity at survey stations caused by
changes in the fluid mass of a reservoir between simulation report steps.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'TLGRAV_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of TLGrav.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("TLGrav v%s\n", tlgrav.Version)
	},
	DisableAutoGenTag: true,
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Calculate gravity changes at stations.",
	Long: `eval builds the configured surveys and calculates the gravity change
between each configured survey pair at each station in StationsFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		_, err = Run(context.Background(), cmd, c)
		return err
	},
	DisableAutoGenTag: true,
}

var surveysCmd = &cobra.Command{
	Use:   "surveys",
	Short: "Print the fluid mass of each survey.",
	Long: `surveys builds the configured surveys and prints the total mass of each
phase in each one, excluding aquifer cells.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return SurveyMasses(context.Background(), cmd, c)
	},
	DisableAutoGenTag: true,
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords FILE",
	Short: "List the keywords in a dataset file.",
	Long: `keywords prints the simulator variant, phases, and keywords of a NetCDF
initialization or restart dataset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Keywords(context.Background(), cmd.OutOrStdout(), args[0])
	},
	DisableAutoGenTag: true,
}
