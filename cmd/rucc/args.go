package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds everything the command line dictates about one invocation.
type Options struct {
	Src         string   // Path to source file.
	Out         string   // Path to output file, empty for stdout.
	ConfigPath  string   // Path to the TOML defaults file, empty for the platform default.
	IncludeDirs []string // Extra system include directories (-I).
	Defines     []string // Predefined macros (-D), "NAME" or "NAME=BODY".
	Verbose     bool     // Set true if the driver should log per-stage data to stderr.
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "rucc 1.0"

// ---------------------
// ----- Functions -----
// ---------------------

// ParseArgs parses command line arguments.
func ParseArgs() (Options, error) {
	opt := Options{}
	if len(os.Args) < 2 {
		return opt, fmt.Errorf("no source file given")
	}
	args := os.Args[1:]
	for i1 := 0; i1 < len(args); i1++ {
		switch {
		case args[i1] == "-h" || args[i1] == "--h" || args[i1] == "-help" || args[i1] == "--help":
			printHelp()
			os.Exit(0)
		case args[i1] == "-version" || args[i1] == "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case args[i1] == "-v":
			opt.Verbose = true
		case args[i1] == "-o" || args[i1] == "-I" || args[i1] == "-D" || args[i1] == "-config":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, fmt.Errorf("expected argument for flag %s, got new flag %s", args[i1], args[i1+1])
			}
			switch args[i1] {
			case "-o":
				opt.Out = args[i1+1]
			case "-I":
				opt.IncludeDirs = append(opt.IncludeDirs, args[i1+1])
			case "-D":
				opt.Defines = append(opt.Defines, args[i1+1])
			case "-config":
				opt.ConfigPath = args[i1+1]
			}
			i1++
		case strings.HasPrefix(args[i1], "-"):
			return opt, fmt.Errorf("unrecognised flag %s", args[i1])
		default:
			if opt.Src != "" {
				return opt, fmt.Errorf("multiple source files given: %s and %s", opt.Src, args[i1])
			}
			opt.Src = args[i1]
		}
	}
	if opt.Src == "" {
		return opt, fmt.Errorf("no source file given")
	}
	return opt, nil
}

// printHelp prints usage to stdout.
func printHelp() {
	fmt.Println(appVersion)
	fmt.Println("usage: rucc [options] <source>")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\t-o <path>\tWrite preprocessed output to <path> instead of stdout.")
	_, _ = fmt.Fprintln(w, "\t-I <dir>\tAdd <dir> to the system include search path.")
	_, _ = fmt.Fprintln(w, "\t-D <name[=body]>\tPredefine a macro before reading the source.")
	_, _ = fmt.Fprintln(w, "\t-config <path>\tLoad compiler defaults from <path>.")
	_, _ = fmt.Fprintln(w, "\t-v\tLog per-stage diagnostics to stderr.")
	_, _ = fmt.Fprintln(w, "\t-h, -help\tPrint this message and exit.")
	_, _ = fmt.Fprintln(w, "\t-version\tPrint the version and exit.")
	_ = w.Flush()
}
