package main

import (
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/apognu/knox/codec"
	"github.com/apognu/knox/errs"
)

var (
	showPrint     bool
	showWrite     bool
	showStdout    bool
	showAttribute string
)

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Display an entry's attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		entry, err := store.ReadEntry(args[0])
		if err != nil {
			return err
		}

		if showWrite {
			return writeFileAttributes(args[0], entry)
		}

		if showAttribute != "" {
			attr, ok := entry.Attributes[showAttribute]
			if !ok {
				return fmt.Errorf("no attribute %q on %q: %w", showAttribute, args[0], errs.ErrNotFound)
			}
			return printAttribute(attr)
		}

		for _, name := range sortedAttributeNames(entry.Attributes) {
			fmt.Printf("%s: %s\n", name, displayValue(entry.Attributes[name]))
		}

		if entry.Totp != nil {
			fmt.Println("totp: configured")
		}
		return nil
	},
}

// writeFileAttributes dumps an entry's file attributes: to stdout when
// --stdout is set (requiring a single named attribute), otherwise to files
// named after each attribute in the current directory.
func writeFileAttributes(path string, entry codec.Entry) error {
	if showStdout {
		if showAttribute == "" {
			return fmt.Errorf("--stdout requires --attribute to name the attribute to write: %w", errs.ErrInput)
		}
		attr, ok := entry.Attributes[showAttribute]
		if !ok {
			return fmt.Errorf("no attribute %q on %q: %w", showAttribute, path, errs.ErrNotFound)
		}
		if !attr.File {
			return fmt.Errorf("attribute %q is not a file attribute: %w", showAttribute, errs.ErrInput)
		}
		_, err := os.Stdout.Write(attr.BytesValue)
		return err
	}

	wrote := false
	for _, name := range sortedAttributeNames(entry.Attributes) {
		attr := entry.Attributes[name]
		if !attr.File {
			continue
		}
		if showAttribute != "" && name != showAttribute {
			continue
		}
		if err := os.WriteFile(name, attr.BytesValue, 0o600); err != nil {
			return fmt.Errorf("could not write %q: %w", name, err)
		}
		fmt.Printf("wrote %s\n", name)
		wrote = true
	}

	if !wrote {
		return fmt.Errorf("no file attribute to write on %q: %w", path, errs.ErrNotFound)
	}
	return nil
}

// printAttribute emits a single attribute's rendered value: the string
// value, or -- for file attributes -- the UTF-8 decoding of the bytes if
// valid, else the raw byte sequence, so scripted callers piping a binary
// attribute get the actual content.
func printAttribute(attr codec.Attribute) error {
	if attr.File && !utf8.Valid(attr.BytesValue) {
		_, err := os.Stdout.Write(attr.BytesValue)
		return err
	}
	if attr.File {
		fmt.Println(string(attr.BytesValue))
		return nil
	}
	fmt.Println(attr.Value)
	return nil
}

// displayValue renders an attribute for the tabular listing: confidential
// values are redacted unless --print was given, and binary file content is
// summarized rather than dumped into the table.
func displayValue(attr codec.Attribute) string {
	if attr.Confidential && !showPrint {
		return "********"
	}
	if attr.File {
		if utf8.Valid(attr.BytesValue) {
			return string(attr.BytesValue)
		}
		return fmt.Sprintf("<%d bytes of binary data>", len(attr.BytesValue))
	}
	return attr.Value
}

func sortedAttributeNames(attrs map[string]codec.Attribute) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showPrint, "print", false, "print confidential attribute values in the clear")
	showCmd.Flags().BoolVar(&showWrite, "write", false, "write file attributes out to disk")
	showCmd.Flags().BoolVar(&showStdout, "stdout", false, "with --write, write the named attribute to stdout")
	showCmd.Flags().StringVar(&showAttribute, "attribute", "", "only show a single named attribute")
}
