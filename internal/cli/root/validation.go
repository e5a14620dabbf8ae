package root

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/regenrek/panestore/internal/cli/spec"
)

// checkInput validates positional arguments and flag constraints before a
// handler runs. All problems are reported together.
func checkInput(cmdSpec spec.Command, cmd *cli.Command) error {
	var errs []error
	for _, arg := range cmdSpec.Args {
		if err := checkArg(arg, argValues(arg, cmd)); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range cmdSpec.Constraints {
		if err := checkConstraint(c, func(field string) bool { return provided(field, cmdSpec, cmd) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func argValues(arg spec.Arg, cmd *cli.Command) []string {
	name := strings.TrimSpace(arg.Name)
	if name == "" || cmd == nil {
		return nil
	}
	var raw []string
	if arg.Variadic {
		raw = cmd.StringArgs(name)
	} else {
		raw = []string{cmd.StringArg(name)}
	}
	out := raw[:0:0]
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func checkArg(arg spec.Arg, values []string) error {
	if len(values) == 0 {
		if arg.Required {
			return fmt.Errorf("missing argument %q", arg.Name)
		}
		return nil
	}
	if len(arg.Enum) == 0 {
		return nil
	}
	for _, v := range values {
		if !slices.Contains(arg.Enum, v) {
			return fmt.Errorf("argument %q: %q is not one of %s", arg.Name, v, strings.Join(arg.Enum, ", "))
		}
	}
	return nil
}

// checkConstraint applies one rule. For "requires" the first field needs
// all of the others.
func checkConstraint(c spec.Constraint, present func(string) bool) error {
	if len(c.Fields) == 0 {
		return nil
	}
	var set []string
	for _, f := range c.Fields {
		if present(f) {
			set = append(set, f)
		}
	}
	list := strings.Join(c.Fields, ", ")
	switch strings.TrimSpace(c.Type) {
	case "exactly_one":
		if len(set) != 1 {
			return fmt.Errorf("exactly one of %s is required", list)
		}
	case "at_least_one":
		if len(set) == 0 {
			return fmt.Errorf("at least one of %s is required", list)
		}
	case "excludes":
		if len(set) > 1 {
			return fmt.Errorf("%s cannot be combined", strings.Join(set, " and "))
		}
	case "requires":
		if !present(c.Fields[0]) {
			return nil
		}
		for _, f := range c.Fields[1:] {
			if !present(f) {
				return fmt.Errorf("%s requires %s", c.Fields[0], f)
			}
		}
	default:
		return fmt.Errorf("unknown constraint %q", c.Type)
	}
	return nil
}

// provided reports whether field was given as an argument or set as a flag.
func provided(field string, cmdSpec spec.Command, cmd *cli.Command) bool {
	field = strings.TrimSpace(field)
	if field == "" || cmd == nil {
		return false
	}
	for _, arg := range cmdSpec.Args {
		if arg.Name == field {
			return len(argValues(arg, cmd)) > 0
		}
	}
	return cmd.IsSet(field)
}
