package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmmoran/modelgen/pkg/action/model"
	"github.com/cmmoran/modelgen/pkg/builder"
)

func init() {
	rootCmd.AddCommand(NewModelCommand())
}

// flag name → key under "model" in the tool config
var modelKeys = map[string]string{
	"name":              "name",
	"force":             "force",
	"class-name":        "className",
	"file-name":         "fileName",
	"directory":         "directory",
	"models-dir":        "modelsDir",
	"namespace":         "namespace",
	"derived-namespace": "derivedNamespace",
	"get-set":           "genSettersGetters",
	"doc":               "genDocMethods",
	"schema":            "schema",
	"exclude-fields":    "excludeFields",
	"extends":           "extends",
	"map-column":        "mapColumn",
	"license":           "license",
	"type-map":          "typeMap",
}

func NewModelCommand() *cobra.Command {
	var hasMany, belongsTo []string

	// modelCmd represents the modelgen model command
	var modelCmd = &cobra.Command{
		Use:   "model [table]",
		Short: "generate a model",
		Long:  "Generate a Phalcon model class for a database table, preserving hand-written methods of an existing one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			settings := struct {
				Model *builder.Options `mapstructure:"model"`
			}{Model: builder.NewOptions()}
			if err := viper.Unmarshal(&settings); err != nil {
				return fmt.Errorf("%w: %w", builder.ErrConfiguration, err)
			}
			options := settings.Model
			if len(args) > 0 {
				options.Name = args[0]
			}
			if err := options.Normalize(hasMany, belongsTo); err != nil {
				return err
			}

			c.SilenceUsage = true
			if _, err := model.Generate(c.Context(), options); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.OutOrStdout(), color.New(color.FgGreen).Sprintf("Model %q was successfully created.", options.Name))
			return nil
		},
	}
	flags := modelCmd.Flags()
	flags.StringP("name", "n", "", "table name")
	flags.BoolP("force", "f", false, "overwrite an existing model file")
	flags.String("class-name", "", "class name, defaults to the camelized table name")
	flags.String("file-name", "", "source the model is mapped to, defaults to the table name")
	flags.StringP("directory", "d", "", "project directory holding the configuration")
	flags.StringP("models-dir", "o", "", "models directory, overrides application.modelsDir")
	flags.String("namespace", "", "namespace of the model")
	flags.String("derived-namespace", "", "namespace used to qualify related models")
	flags.BoolP("get-set", "g", false, "protected attributes with setters and getters")
	flags.Bool("doc", false, "typed find and findFirst helpers")
	flags.String("schema", "", "database schema")
	flags.StringP("exclude-fields", "e", "", "comma separated columns to leave out")
	flags.String("extends", builder.DefaultExtends, "parent class")
	flags.Bool("map-column", false, "generate columnMap()")
	flags.String("license", builder.DefaultLicense, "file whose contents head the generated file")
	flags.StringToString("type-map", nil, "getter wrapper class per PHP type, ex: string=\\App\\Text")
	flags.StringArrayVar(&hasMany, "has-many", nil, "hasMany relation, ex: id:RobotsParts:robots_id?reusable=true")
	flags.StringArrayVar(&belongsTo, "belongs-to", nil, "belongsTo relation, ex: robots_id:Robots:id")
	for flag, key := range modelKeys {
		_ = viper.BindPFlag("model."+key, flags.Lookup(flag))
	}

	return modelCmd
}
