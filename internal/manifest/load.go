package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"scriptweaver/internal/core"
)

// maxSuggestions bounds how many fuzzy "did you mean" candidates an
// UnknownTaskClassError carries, so a manifest with hundreds of class
// names never produces an unreadable error.
const maxSuggestions = 3

// Load decodes a manifest document from r and reconstructs a Registry:
// every unit in its original registration order, wired to the same
// producer/consumer Connector relationships it had when saved, with every
// recorded checksum reinstalled rather than recomputed.
//
// resolver supplies the constructor for each unit's (module, class) pair;
// Load has no notion of concrete task types itself.
func Load(r io.Reader, resolver ClassResolver) (*core.Registry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("manifest: reading: %w", err)
	}
	if err := validateAgainstSchema(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if doc.SchemaVersion != SchemaVersion {
		return nil, &SchemaVersionMismatchError{Got: doc.SchemaVersion, Expected: SchemaVersion}
	}

	reg, err := core.NewRegistry(core.Options{
		WorkingDir: doc.WorkingDir,
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(doc.LogLevel)})),
	})
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	for i, rec := range doc.Units {
		if err := reconstructUnit(reg, resolver, i, rec); err != nil {
			return nil, err
		}
	}

	if doc.RootNode != "" {
		root, err := reg.Unit(doc.RootNode)
		if err != nil {
			return nil, fmt.Errorf("manifest: resolving root node: %w", err)
		}
		reg.SetRoot(root)
	}

	return reg, nil
}

// reconstructUnit materializes one saved unit record, identified for error
// reporting by its position in the manifest's "units" array (the manifest
// carries no separate per-unit identifier — the reconstructed unit's key is
// derived the same way the original's was, from its registration order).
func reconstructUnit(reg *core.Registry, resolver ClassResolver, index int, rec core.UnitRecord) error {
	ctor, ok := resolver.Resolve(rec.Module, rec.Class)
	if !ok {
		return &UnknownTaskClassError{
			Module:      rec.Module,
			Class:       rec.Class,
			Suggestions: suggestClassNames(rec.Class, resolver.ClassNames()),
		}
	}

	args := make([]any, len(rec.Inputs))
	checksums := make([]string, len(rec.Inputs))
	for i, ip := range rec.Inputs {
		arg, err := resolveInputArg(reg, index, i, ip)
		if err != nil {
			return err
		}
		args[i] = arg
		if ip.Checksum != nil {
			checksums[i] = *ip.Checksum
		}
	}

	unit, err := ctor(reg, args)
	if err != nil {
		return fmt.Errorf("manifest: constructing unit %d (%s.%s): %w", index, rec.Module, rec.Class, err)
	}
	if setter, ok := unit.(core.ChecksumInstaller); ok {
		setter.SetChecksums(checksums)
	}
	return nil
}

// resolveInputArg turns one saved input record into the positional
// constructor argument it represents: a literal value, a bare filename
// string, or a reference to a previously reconstructed unit's output
// Connector. unitIndex identifies the owning unit only for error messages.
func resolveInputArg(reg *core.Registry, unitIndex, index int, ip core.InputRecord) (any, error) {
	switch ip.Type {
	case "Source":
		if !ip.Value.IsUnset() {
			return ip.Value, nil
		}
		if ip.Filename != nil && *ip.Filename != "" {
			return *ip.Filename, nil
		}
		return nil, nil
	case "Connector":
		parent, err := reg.Unit(ip.Parent)
		if err != nil {
			return nil, fmt.Errorf("manifest: unit %d input %d: %w", unitIndex, index, err)
		}
		provider, ok := parent.(core.OutputProvider)
		if !ok {
			return nil, fmt.Errorf("manifest: unit %d input %d: parent %q exposes no outputs", unitIndex, index, ip.Parent)
		}
		conn, err := provider.Output(ip.Key)
		if err != nil {
			return nil, fmt.Errorf("manifest: unit %d input %d: %w", unitIndex, index, err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("manifest: unit %d input %d: unknown input type %q", unitIndex, index, ip.Type)
	}
}

func suggestClassNames(target string, candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return nil
	}
	if len(ranks) > maxSuggestions {
		ranks = ranks[:maxSuggestions]
	}
	out := make([]string, len(ranks))
	for i, rank := range ranks {
		out[i] = rank.Target
	}
	return out
}
