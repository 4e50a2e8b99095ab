package proposal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vsinha/rebalance/pkg/application/dto"
	"github.com/vsinha/rebalance/pkg/application/services/reallocation"
	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// DefaultCommandTimeout bounds a CommandProposer without its own timeout
const DefaultCommandTimeout = 60 * time.Second

// Verify interface compliance
var (
	_ reallocation.Proposer = (*FileProposer)(nil)
	_ reallocation.Proposer = (*CommandProposer)(nil)
	_ reallocation.Proposer = (*StaticProposer)(nil)
)

// FileProposer reads a proposal prepared ahead of time
type FileProposer struct {
	Path string
}

func NewFileProposer(path string) *FileProposer {
	return &FileProposer{Path: path}
}

func (p *FileProposer) Propose(ctx context.Context, _ *dto.FactSheet) (*dto.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal: %w", err)
	}
	proposal, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proposal %s: %w", p.Path, err)
	}
	proposal.Source = "file:" + p.Path
	return proposal, nil
}

// CommandProposer runs an external program with the fact sheet as JSON on
// stdin and parses its stdout as a proposal
type CommandProposer struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// NewCommandProposer splits a command line on whitespace. Quotes are not
// interpreted, so a path or argument containing spaces must go through
// NewCommandProposerArgs instead.
func NewCommandProposer(commandLine string, timeout time.Duration) (*CommandProposer, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("proposer command cannot be empty")
	}
	return NewCommandProposerArgs(fields[0], fields[1:], timeout)
}

// NewCommandProposerArgs runs name with args passed through unchanged
func NewCommandProposerArgs(name string, args []string, timeout time.Duration) (*CommandProposer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("proposer command cannot be empty")
	}
	return &CommandProposer{Name: name, Args: append([]string(nil), args...), Timeout: timeout}, nil
}

func (p *CommandProposer) Propose(ctx context.Context, facts *dto.FactSheet) (*dto.Proposal, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	input, err := json.Marshal(facts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fact sheet: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Name, p.Args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("proposer %s: %w", p.Name, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("proposer %s failed: %w: %s", p.Name, err, msg)
		}
		return nil, fmt.Errorf("proposer %s failed: %w", p.Name, err)
	}

	proposal, err := Parse(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("proposer %s: %w", p.Name, err)
	}
	proposal.Source = "command:" + p.Name
	return proposal, nil
}

// StaticProposer always returns the same candidates
type StaticProposer struct {
	Strategy string
	Moves    []entities.Candidate
}

func (p *StaticProposer) Propose(ctx context.Context, _ *dto.FactSheet) (*dto.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	moves := make([]entities.Candidate, len(p.Moves))
	copy(moves, p.Moves)
	return &dto.Proposal{Strategy: p.Strategy, Moves: moves, Source: "static"}, nil
}
