package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// varPattern captures the inside of a ${...} brace pair.
var varPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Substitute performs Compose-style variable substitution on the input text.
// The supported expressions are:
//
//  1. ${VAR}          - value of VAR (empty string if unset)
//  2. ${VAR:-default} - default if VAR is unset OR empty
//  3. ${VAR-default}  - default if VAR is unset (set-but-empty stays empty)
//  4. ${VAR:?err}     - error if VAR is unset OR empty (message "err")
//  5. ${VAR?err}      - error if VAR is unset (message "err")
//
// Values are looked up in the provided vars map first, then in the process
// environment. The function returns the resulting string or an error if a
// mandatory variable is missing.
func Substitute(input string, vars map[string]string) (string, error) {
	indices := varPattern.FindAllStringSubmatchIndex(input, -1)
	if len(indices) == 0 {
		return input, nil
	}

	var builder strings.Builder
	builder.Grow(len(input))

	lastPos := 0
	for _, idx := range indices {
		fullStart, fullEnd := idx[0], idx[1]
		exprStart, exprEnd := idx[2], idx[3]

		builder.WriteString(input[lastPos:fullStart])

		substitution, err := evaluateExpression(input[exprStart:exprEnd], vars)
		if err != nil {
			return "", err
		}
		builder.WriteString(substitution)

		lastPos = fullEnd
	}

	builder.WriteString(input[lastPos:])

	return builder.String(), nil
}

// evaluateExpression processes a single variable expression without the
// enclosing ${}.
func evaluateExpression(expr string, vars map[string]string) (string, error) {
	var name, op, operand string

	split := func(token string) (string, string) {
		idx := strings.Index(expr, token)
		return expr[:idx], expr[idx+len(token):]
	}

	// Two-character operators must be checked before their one-character forms.
	switch {
	case strings.Contains(expr, ":-"):
		name, operand = split(":-")
		op = ":-"
	case strings.Contains(expr, ":?"):
		name, operand = split(":?")
		op = ":?"
	case strings.Contains(expr, "-"):
		name, operand = split("-")
		op = "-"
	case strings.Contains(expr, "?"):
		name, operand = split("?")
		op = "?"
	default:
		name = expr
	}

	name = strings.TrimSpace(name)

	value, exists := lookupVariable(name, vars)

	switch op {
	case "":
		if exists {
			return value, nil
		}
		return "", nil // Unset becomes an empty string.

	case "-": // default if UNSET
		if exists {
			return value, nil
		}
		return operand, nil

	case ":-": // default if UNSET or EMPTY
		if exists && value != "" {
			return value, nil
		}
		return operand, nil

	case "?": // error if UNSET
		if exists {
			return value, nil
		}
		return "", fmt.Errorf("variable %s is not set: %s", name, operand)

	case ":?": // error if UNSET or EMPTY
		if exists && value != "" {
			return value, nil
		}
		return "", fmt.Errorf("variable %s is not set or empty: %s", name, operand)

	default:
		return "", fmt.Errorf("invalid variable expression: ${%s}", expr)
	}
}

// lookupVariable returns (value, exists); the vars map takes precedence over
// the process environment.
func lookupVariable(name string, vars map[string]string) (string, bool) {
	if vars != nil {
		if v, ok := vars[name]; ok {
			return v, true
		}
	}
	v, ok := os.LookupEnv(name)
	return v, ok
}
