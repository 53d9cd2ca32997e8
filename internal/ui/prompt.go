// Package ui is the interactive consumer of the duplicate-group stream:
// for each group it presents keep-all, delete-by-index, keep-oldest,
// keep-newest, and quit, then deletes the chosen files from disk.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"dupfind/internal/detector"
	"dupfind/internal/orchestrator"
	"dupfind/pkg/db/models"
)

var (
	highlightGroup = color.New(color.FgCyan, color.Bold).SprintFunc()
	highlightKeep  = color.New(color.FgGreen).SprintFunc()
	highlightDrop  = color.New(color.FgRed).SprintFunc()
	highlightInfo  = color.New(color.Faint).SprintFunc()
)

const (
	actionKeepAll    = "keep all"
	actionDelete     = "delete by index"
	actionKeepOldest = "keep oldest"
	actionKeepNewest = "keep newest"
	actionQuit       = "quit"
)

// Prompt is an orchestrator.Consumer that drives promptui against a
// terminal. DryRun reports what would be deleted without touching disk.
type Prompt struct {
	DryRun bool
}

var _ orchestrator.Consumer = (*Prompt)(nil)

func (p *Prompt) Consume(ctx context.Context, groups <-chan detector.Result) (bool, error) {
	index := 0
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case r, ok := <-groups:
			if !ok {
				return false, nil
			}
			if r.Err != nil {
				return false, r.Err
			}
			index++
			quit, err := p.handleGroup(index, r.Group)
			if err != nil {
				return false, err
			}
			if quit {
				return true, nil
			}
		}
	}
}

func (p *Prompt) handleGroup(index int, group models.DuplicateGroup) (quit bool, err error) {
	printGroup(index, group)

	actionPrompt := promptui.Select{
		Label: "Action",
		Items: []string{actionKeepAll, actionDelete, actionKeepOldest, actionKeepNewest, actionQuit},
	}
	_, action, err := actionPrompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return true, nil
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	switch action {
	case actionKeepAll:
		return false, nil
	case actionQuit:
		return true, nil
	case actionKeepOldest:
		return false, p.deleteAllBut(oldestIndex(group.Files), group.Files)
	case actionKeepNewest:
		return false, p.deleteAllBut(newestIndex(group.Files), group.Files)
	case actionDelete:
		return false, p.promptDeleteByIndex(group.Files)
	default:
		return false, nil
	}
}

func (p *Prompt) promptDeleteByIndex(files []models.FileRecord) error {
	listPrompt := promptui.Prompt{
		Label: "Indexes to delete (e.g. 2,3), blank to keep all",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return nil
			}
			_, err := parseIndexList(input, len(files))
			return err
		},
	}
	input, err := listPrompt.Run()
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	if strings.TrimSpace(input) == "" {
		return nil
	}

	indexes, err := parseIndexList(input, len(files))
	if err != nil {
		return err
	}
	return p.deleteIndexes(indexes, files)
}

func (p *Prompt) deleteAllBut(keep int, files []models.FileRecord) error {
	var indexes []int
	for i := range files {
		if i != keep {
			indexes = append(indexes, i)
		}
	}
	return p.deleteIndexes(indexes, files)
}

func (p *Prompt) deleteIndexes(indexes []int, files []models.FileRecord) error {
	for _, i := range indexes {
		f := files[i]
		if p.DryRun {
			fmt.Printf("  %s %s\n", highlightDrop("would delete"), f.Path)
			continue
		}
		if err := os.Remove(f.Path); err != nil {
			fmt.Printf("  %s %s: %v\n", highlightDrop("failed to delete"), f.Path, err)
			continue
		}
		fmt.Printf("  %s %s\n", highlightDrop("deleted"), f.Path)
	}
	return nil
}

func printGroup(index int, group models.DuplicateGroup) {
	label := fmt.Sprintf("size %s", humanize.Bytes(uint64(group.Size)))
	if group.Hash != nil {
		label = fmt.Sprintf("%s, hash %016x", label, *group.Hash)
	}
	fmt.Printf("\n%s %s (%d files)\n", highlightGroup(fmt.Sprintf("Group %d", index)), highlightInfo(label), len(group.Files))

	for i, f := range group.Files {
		fmt.Printf("  [%d] %s %s\n", i+1, f.Path, highlightInfo(fmt.Sprintf("(mtime %d)", f.Modified)))
	}
}

func oldestIndex(files []models.FileRecord) int {
	best := 0
	for i, f := range files {
		if f.Modified < files[best].Modified {
			best = i
		}
	}
	return best
}

func newestIndex(files []models.FileRecord) int {
	best := 0
	for i, f := range files {
		if f.Modified > files[best].Modified {
			best = i
		}
	}
	return best
}

// parseIndexList parses a comma-separated 1-based index list like "2,3"
// into validated, de-duplicated, sorted 0-based indexes.
func parseIndexList(input string, n int) ([]int, error) {
	seen := make(map[int]bool)
	var out []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		if v < 1 || v > n {
			return nil, fmt.Errorf("index %d out of range 1..%d", v, n)
		}
		if seen[v-1] {
			continue
		}
		seen[v-1] = true
		out = append(out, v-1)
	}
	sort.Ints(out)
	return out, nil
}
