// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// zpr-inspect is an operator tool for poking at ZPR protocol data:
// distinguished names, packet headers, capture files, and raw CBOR.
//
// Subcommands:
//
//	dn       parse a distinguished name and print its canonical form
//	packet   decode a packet header from hex or a file
//	capture  dump the records of a capture file
//	diag     print CBOR diagnostic notation for a hex blob
//
// Exit codes: 0 on success, 1 on a failed operation, 2 on usage errors.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/zpr-foundation/zprproto/lib/capture"
	"github.com/zpr-foundation/zprproto/lib/codec"
	"github.com/zpr-foundation/zprproto/lib/dn"
	"github.com/zpr-foundation/zprproto/lib/packet"
	"github.com/zpr-foundation/zprproto/lib/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// usageError distinguishes bad invocations (exit 2) from failed
// operations (exit 1).
type usageError struct {
	message string
}

func (e usageError) Error() string { return e.message }

func run(args []string) int {
	if len(args) > 0 && args[0] == "--version" {
		fmt.Printf("zpr-inspect %s\n", version.Info())
		return 0
	}
	if len(args) == 0 || isHelpFlag(args[0]) {
		printUsage(os.Stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	var err error
	switch args[0] {
	case "dn":
		err = runDN(args[1:])
	case "packet":
		err = runPacket(args[1:])
	case "capture":
		err = runCapture(args[1:])
	case "diag":
		err = runDiag(args[1:])
	default:
		err = usageError{fmt.Sprintf("unknown subcommand %q", args[0])}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			printUsage(os.Stderr)
			return 2
		}
		return 1
	}
	return 0
}

func isHelpFlag(arg string) bool {
	return arg == "--help" || arg == "-h" || arg == "help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: zpr-inspect <subcommand> [flags]

subcommands:
  dn <name>                 parse a distinguished name
  packet --hex <hex>        decode a packet header
  packet --file <path>      decode a packet header from a file
  capture <file>            dump a capture file
  diag <hex>                CBOR diagnostic notation for a hex blob

flags:
  --version                 print version and exit
`)
}

func runDN(args []string) error {
	flagSet := pflag.NewFlagSet("dn", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	derOnly := flagSet.Bool("der", false, "print only the DER encoding as hex")
	if err := flagSet.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if flagSet.NArg() != 1 {
		return usageError{"dn takes exactly one name"}
	}

	name, err := dn.Parse(flagSet.Arg(0))
	if err != nil {
		return err
	}
	der, err := name.DER()
	if err != nil {
		return err
	}
	if *derOnly {
		fmt.Println(hex.EncodeToString(der))
		return nil
	}

	fmt.Printf("canonical: %s\n", name)
	for i, component := range name.Components() {
		fmt.Printf("component %d: %s = %s\n", i, component.Type, component.Value)
	}
	if cn := name.CommonName(); cn != "" {
		fmt.Printf("common name: %s\n", cn)
	}
	fmt.Printf("der: %s\n", hex.EncodeToString(der))
	return nil
}

func runPacket(args []string) error {
	flagSet := pflag.NewFlagSet("packet", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	hexInput := flagSet.String("hex", "", "packet header as hex")
	filePath := flagSet.String("file", "", "file containing a packet header")
	payloadLen := flagSet.Int("payload-len", -1, "verify the header against this payload length")
	if err := flagSet.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if (*hexInput == "") == (*filePath == "") {
		return usageError{"packet needs exactly one of --hex or --file"}
	}

	var data []byte
	var err error
	if *hexInput != "" {
		data, err = hex.DecodeString(strings.TrimSpace(*hexInput))
		if err != nil {
			return fmt.Errorf("decoding hex: %w", err)
		}
	} else {
		data, err = os.ReadFile(*filePath)
		if err != nil {
			return err
		}
	}

	info, err := packet.ReadInfo(bytes.NewReader(data))
	if err != nil {
		return err
	}
	printInfo(info)

	if *payloadLen >= 0 {
		if err := info.VerifyPayload(make([]byte, *payloadLen)); err != nil {
			return err
		}
		fmt.Printf("payload length %d verified\n", *payloadLen)
	}
	return nil
}

func printInfo(info packet.Info) {
	fmt.Printf("command:     %s\n", info.Command)
	fmt.Printf("sequence:    %d\n", info.Sequence)
	fmt.Printf("link:        %d stream %d\n", info.Link, info.Stream)
	fmt.Printf("flags:       0x%04x\n", info.Flags)
	fmt.Printf("length:      %d\n", info.Length)
	fmt.Printf("source:      %s %s\n", info.Source.Addr, info.Source.Name)
	fmt.Printf("destination: %s %s\n", info.Destination.Addr, info.Destination.Name)
}

func runCapture(args []string) error {
	flagSet := pflag.NewFlagSet("capture", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	maxRecords := flagSet.Int("max", 0, "stop after this many records (0 = all)")
	if err := flagSet.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if flagSet.NArg() != 1 {
		return usageError{"capture takes exactly one file"}
	}

	file, err := os.Open(flagSet.Arg(0))
	if err != nil {
		return err
	}
	defer file.Close()

	reader, err := capture.NewReader(file)
	if err != nil {
		return err
	}
	fmt.Printf("compression: %s\n", reader.Compression())

	count := 0
	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Printf("--- record %d at %s (%d payload bytes)\n",
			entry.Seq, entry.Time.UTC().Format("2006-01-02T15:04:05.000Z"), len(entry.Payload))
		printInfo(entry.Info)

		count++
		if *maxRecords > 0 && count >= *maxRecords {
			break
		}
	}
	fmt.Printf("%d records\n", count)
	return nil
}

func runDiag(args []string) error {
	flagSet := pflag.NewFlagSet("diag", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if flagSet.NArg() != 1 {
		return usageError{"diag takes exactly one hex blob"}
	}

	data, err := hex.DecodeString(strings.TrimSpace(flagSet.Arg(0)))
	if err != nil {
		return fmt.Errorf("decoding hex: %w", err)
	}

	remaining := data
	for len(remaining) > 0 {
		diagnostic, rest, err := codec.DiagnoseFirst(remaining)
		if err != nil {
			return err
		}
		fmt.Println(diagnostic)
		remaining = rest
	}
	return nil
}
