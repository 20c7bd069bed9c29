/*
Package config loads burrow's settings.

# Files

A config file is YAML or JSON, chosen by extension. Nested sections are
read with dotted keys:

	cfg, err := config.FromFile("burrow.yaml")
	if err != nil {
	    return err
	}
	level := cfg.String("log.level", "info")
	every := cfg.Sub("savegame").Int("every", 0)

Missing keys and values of the wrong type yield the default.

# Settings

Settings is the typed result. Precedence, lowest first: Defaults, the file
named by --config, flags set on the command line.

	fs := pflag.NewFlagSet("burrow", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
	    return err
	}
	s, err := config.Load(fs)
*/
package config
