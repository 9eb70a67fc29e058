// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zpr-foundation/zprproto/lib/dn"
	"github.com/zpr-foundation/zprproto/lib/packet"
	"github.com/zpr-foundation/zprproto/lib/rpccmd"
)

// ErrInvalidProgram is wrapped when a capture program definition fails
// to parse or validate.
var ErrInvalidProgram = errors.New("invalid capture program")

// Program is a capture filter, installed by the set-capture-program
// command and removed by delete-capture-program. Empty criteria match
// everything; multiple criteria must all match.
type Program struct {
	Name     string
	Commands []rpccmd.Command
	Links    []packet.LinkID
	// SourceSubtree matches packets whose source name is the subtree
	// root or below it. The zero DN matches any source.
	SourceSubtree dn.DN
	// DestSubtree is the destination-side counterpart.
	DestSubtree dn.DN
}

// programFile is the YAML shape of a program definition.
type programFile struct {
	Name          string   `yaml:"name"`
	Commands      []string `yaml:"commands"`
	Links         []uint32 `yaml:"links"`
	SourceSubtree string   `yaml:"sourceSubtree"`
	DestSubtree   string   `yaml:"destSubtree"`
}

// ParseProgram parses a YAML capture program definition. Command names
// must be known; subtree names must be well formed.
func ParseProgram(data []byte) (Program, error) {
	var file programFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Program{}, fmt.Errorf("%w: %v", ErrInvalidProgram, err)
	}
	if file.Name == "" {
		return Program{}, fmt.Errorf("%w: missing name", ErrInvalidProgram)
	}

	program := Program{Name: file.Name}
	for _, name := range file.Commands {
		command, err := rpccmd.ParseCommand(name)
		if err != nil {
			return Program{}, fmt.Errorf("%w: command %q: %v", ErrInvalidProgram, name, err)
		}
		program.Commands = append(program.Commands, command)
	}
	for _, link := range file.Links {
		program.Links = append(program.Links, packet.LinkID(link))
	}
	if file.SourceSubtree != "" {
		subtree, err := dn.Parse(file.SourceSubtree)
		if err != nil {
			return Program{}, fmt.Errorf("%w: source subtree: %v", ErrInvalidProgram, err)
		}
		program.SourceSubtree = subtree
	}
	if file.DestSubtree != "" {
		subtree, err := dn.Parse(file.DestSubtree)
		if err != nil {
			return Program{}, fmt.Errorf("%w: dest subtree: %v", ErrInvalidProgram, err)
		}
		program.DestSubtree = subtree
	}
	return program, nil
}

// LoadProgram reads a YAML program file from disk and parses it.
func LoadProgram(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Program{}, fmt.Errorf("reading %s: %w", path, err)
	}
	program, err := ParseProgram(data)
	if err != nil {
		return Program{}, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// Matches reports whether the program selects a packet with this
// header.
func (p Program) Matches(info packet.Info) bool {
	if len(p.Commands) > 0 && !containsCommand(p.Commands, info.Command) {
		return false
	}
	if len(p.Links) > 0 && !containsLink(p.Links, info.Link) {
		return false
	}
	if !matchesSubtree(p.SourceSubtree, info.Source.Name) {
		return false
	}
	if !matchesSubtree(p.DestSubtree, info.Destination.Name) {
		return false
	}
	return true
}

func containsCommand(commands []rpccmd.Command, command rpccmd.Command) bool {
	for _, c := range commands {
		if c == command {
			return true
		}
	}
	return false
}

func containsLink(links []packet.LinkID, link packet.LinkID) bool {
	for _, l := range links {
		if l == link {
			return true
		}
	}
	return false
}

// matchesSubtree matches names at or below the subtree root. A zero
// subtree matches everything.
func matchesSubtree(subtree, name dn.DN) bool {
	if subtree == (dn.DN{}) {
		return true
	}
	return name == subtree || subtree.IsAncestorOf(name)
}
