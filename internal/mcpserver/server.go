// Package mcpserver exposes env file editing to agents over the Model
// Context Protocol. Secret values are never returned; reads go through the
// mask detector.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/mask"
	"github.com/xmazu/envedit/internal/schema"
	"github.com/xmazu/envedit/internal/workspace"
)

// Options carry the settings the CLI resolved from flags and config.
type Options struct {
	Version string
	// File is the env file name looked up from the tool's workdir.
	File    string
	Atomic  bool
	Journal bool
	Schema  *schema.Spec
}

type server struct {
	opts   Options
	detect *mask.Detector
}

func Run(ctx context.Context, opts Options) error {
	return New(opts).Run(ctx, &mcpsdk.StdioTransport{})
}

// New builds the MCP server with every tool registered.
func New(opts Options) *mcpsdk.Server {
	if opts.File == "" {
		opts.File = ".env"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &server{opts: opts, detect: mask.NewDetector()}

	srv := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "envedit",
		Version: opts.Version,
	}, nil)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "list_keys",
		Description: "List the keys of the project's .env file in document order. Finds the file in the given directory or its parents. Never returns values.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir (default: search for .env)"`
	}) (*mcpsdk.CallToolResult, any, error) {
		f, err := s.load(args.Workdir, args.File)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return successResult(map[string]any{"keys": f.Keys(), "path": f.Path()}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "get_masked",
		Description: "Get a value from the env file. Values that look like secrets are masked (e.g. ****WXYZ); plain values such as ports, booleans and URLs without credentials are returned as is. Also returns the value length.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Key     string `json:"key" jsonschema:"variable name (e.g. API_KEY)"`
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Key == "" {
			return errorResult("key is required"), nil, nil
		}
		f, err := s.load(args.Workdir, args.File)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		value, ok := f.Get(args.Key)
		if !ok {
			return errorResult(fmt.Sprintf("key %q not found in %s", args.Key, f.Path())), nil, nil
		}
		return successResult(map[string]any{
			"key":          args.Key,
			"value":        s.detect.Value(args.Key, value),
			"masked":       value != "" && !s.detect.Plain(args.Key, value),
			"value_length": len(value),
		}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "key_exists",
		Description: "Check whether a key is set in the env file. Returns exists.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Key     string `json:"key" jsonschema:"variable name"`
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Key == "" {
			return errorResult("key is required"), nil, nil
		}
		f, err := s.load(args.Workdir, args.File)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return successResult(map[string]any{"key": args.Key, "exists": f.Has(args.Key)}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "set_value",
		Description: "Create or update a variable, keeping comments and formatting of the rest of the file. Existing keys are updated in place. New keys go to position: bottom (default), top, after:KEY or before:KEY, with spacing blank lines before them. Returns ok and path; never echoes the value.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Key      string `json:"key" jsonschema:"variable name (letters, digits, _ . -; not starting with a digit)"`
		Value    string `json:"value" jsonschema:"value to store"`
		Position string `json:"position,omitempty" jsonschema:"where a new key goes: bottom, top, after:KEY or before:KEY"`
		Spacing  int    `json:"spacing,omitempty" jsonschema:"blank lines before a new key"`
		DryRun   bool   `json:"dry_run,omitempty" jsonschema:"report whether the file would change without writing it"`
		Workdir  string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File     string `json:"file,omitempty" jsonschema:"env file path, relative to workdir; created if missing"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Key == "" {
			return errorResult("key is required"), nil, nil
		}
		pos, ok := envfile.ParsePosition(args.Position)
		if !ok {
			return errorResult(fmt.Sprintf("invalid position %q", args.Position)), nil, nil
		}
		path, err := s.resolve(args.Workdir, args.File, true)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		res, err := editor.Edit(ctx, path, journal.OpSet, func(f *envfile.File) ([]string, error) {
			return []string{args.Key}, f.SetAt(args.Key, args.Value, pos, args.Spacing)
		}, s.editOptions("set_value", args.DryRun, editor.Create(true))...)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return successResult(map[string]any{
			"ok":      true,
			"path":    path,
			"changed": res.Changed,
			"dry_run": res.DryRun,
		}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "remove_key",
		Description: "Remove every entry for a key from the env file. Comments and other lines are kept.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Key     string `json:"key" jsonschema:"variable name to remove"`
		DryRun  bool   `json:"dry_run,omitempty" jsonschema:"report whether the file would change without writing it"`
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Key == "" {
			return errorResult("key is required"), nil, nil
		}
		path, err := s.resolve(args.Workdir, args.File, false)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		res, err := editor.Edit(ctx, path, journal.OpRemove, func(f *envfile.File) ([]string, error) {
			if !f.Remove(args.Key) {
				return nil, fmt.Errorf("key %q not found in %s", args.Key, path)
			}
			return []string{args.Key}, nil
		}, s.editOptions("remove_key", args.DryRun)...)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return successResult(map[string]any{"ok": true, "path": path, "key": args.Key, "dry_run": res.DryRun}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "diff_files",
		Description: "Compare the env file with another one (e.g. .env.example). Returns keys missing from the env file, keys only in the env file and keys whose values differ. Values are masked.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Other   string `json:"other" jsonschema:"path of the file to compare with, relative to workdir"`
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Other == "" {
			return errorResult("other is required"), nil, nil
		}
		f, err := s.load(args.Workdir, args.File)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		d, err := f.Diff(s.relative(args.Workdir, args.Other))
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return successResult(s.maskDiff(d)), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "merge_files",
		Description: "Copy entries from another env file into this one. Existing keys are kept unless override is true. Returns the applied keys.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Other    string `json:"other" jsonschema:"path of the file to merge from, relative to workdir"`
		Override bool   `json:"override,omitempty" jsonschema:"replace values of keys that already exist"`
		DryRun   bool   `json:"dry_run,omitempty" jsonschema:"report the keys that would be applied without writing"`
		Workdir  string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File     string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Other == "" {
			return errorResult("other is required"), nil, nil
		}
		path, err := s.resolve(args.Workdir, args.File, false)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		other := s.relative(args.Workdir, args.Other)

		res, err := editor.Edit(ctx, path, journal.OpMerge, func(f *envfile.File) ([]string, error) {
			return f.Merge(other, args.Override)
		}, s.editOptions("merge_files", args.DryRun, editor.Source(filepath.Base(other)))...)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		applied := res.Keys
		if applied == nil {
			applied = []string{}
		}
		return successResult(map[string]any{"ok": true, "path": path, "applied": applied, "dry_run": res.DryRun}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "preview",
		Description: "Show the env file as it is written on disk, comments and blank lines included, with secret values masked.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		f, err := s.load(args.Workdir, args.File)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return successResult(map[string]any{"path": f.Path(), "content": maskedPreview(f, s.detect)}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "check_schema",
		Description: "Validate the env file against the schema in .envedit.yaml. Returns missing required keys and keys whose values break a rule or type. Does not write defaults.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if s.opts.Schema.Empty() {
			return errorResult("no schema configured in " + workspace.ProjectFileName), nil, nil
		}
		f, err := s.load(args.Workdir, args.File)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		missing, invalid := check(s.opts.Schema, f.ToMap())
		return successResult(map[string]any{
			"valid":   len(missing) == 0 && len(invalid) == 0,
			"missing": missing,
			"invalid": invalid,
		}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "journal_recent",
		Description: "Show recent entries of the edit journal kept next to the env file: operation, file, keys and time. Values are never journaled.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Count   int    `json:"count,omitempty" jsonschema:"number of entries to return (default: 10)"`
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		count := args.Count
		if count <= 0 {
			count = 10
		}
		path, err := s.resolve(args.Workdir, args.File, false)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		entries, err := journal.Show(filepath.Dir(path), count)
		if err != nil {
			if errors.Is(err, journal.ErrNoJournal) {
				return successResult(map[string]any{"entries": []any{}, "message": "No journal found"}), nil, nil
			}
			return errorResult(err.Error()), nil, nil
		}
		return successResult(map[string]any{"entries": entries}), nil, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "journal_verify",
		Description: "Verify the hash chain of the edit journal. Reports the line numbers where the chain breaks.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Workdir string `json:"workdir,omitempty" jsonschema:"directory to search for the env file (default: current)"`
		File    string `json:"file,omitempty" jsonschema:"env file path, relative to workdir"`
	}) (*mcpsdk.CallToolResult, any, error) {
		path, err := s.resolve(args.Workdir, args.File, false)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		result, err := journal.Verify(filepath.Dir(path))
		if err != nil {
			if errors.Is(err, journal.ErrNoJournal) {
				return successResult(map[string]any{"verified": false, "message": "No journal found"}), nil, nil
			}
			return errorResult(err.Error()), nil, nil
		}

		msg := "Journal chain integrity verified"
		if !result.OK() {
			msg = "Chain breaks detected - journal may have been tampered with"
		}
		return successResult(map[string]any{
			"verified":      result.OK(),
			"total_entries": result.TotalEntries,
			"breaks":        result.Breaks,
			"message":       msg,
		}), nil, nil
	})

	return srv
}

func (s *server) editOptions(tool string, dryRun bool, extra ...editor.Option) []editor.Option {
	return append([]editor.Option{
		editor.Atomic(s.opts.Atomic),
		editor.Journal(s.opts.Journal),
		editor.DryRun(dryRun),
		editor.Tool(tool),
	}, extra...)
}

func (s *server) load(workdir, file string) (*envfile.File, error) {
	path, err := s.resolve(workdir, file, false)
	if err != nil {
		return nil, err
	}
	return envfile.Load(path)
}

// resolve finds the env file for a tool call. An explicit file is taken
// relative to workdir; otherwise the configured name is searched for from
// workdir upwards. With create, a missing file resolves to workdir/name.
func (s *server) resolve(workdir, file string, create bool) (string, error) {
	if file != "" {
		return s.relative(workdir, file), nil
	}
	path, err := workspace.FindEnvInParents(workdir, s.opts.File, workspace.MaxEnvSearchDepth)
	if err != nil && create {
		return filepath.Abs(s.relative(workdir, s.opts.File))
	}
	return path, err
}

func (s *server) relative(workdir, path string) string {
	if filepath.IsAbs(path) || workdir == "" {
		return path
	}
	return filepath.Join(workdir, path)
}

func (s *server) maskDiff(d *envfile.DiffResult) map[string]any {
	changed := make(map[string]map[string]string, len(d.Changed))
	for k, c := range d.Changed {
		changed[k] = map[string]string{
			"current": s.detect.Value(k, c.Current),
			"other":   s.detect.Value(k, c.Other),
		}
	}
	return map[string]any{
		"missing_in_current": s.detect.Map(d.MissingInCurrent),
		"extra_in_current":   s.detect.Map(d.ExtraInCurrent),
		"changed":            changed,
		"in_sync":            d.Empty(),
	}
}

// check validates values against spec without touching the document.
// It returns the missing required keys and, for every other failure, the
// key with the reason.
func check(spec *schema.Spec, values map[string]string) (missing []string, invalid map[string]string) {
	missing = []string{}
	invalid = map[string]string{}

	_, err := spec.Validate(mapStore(values))
	for _, e := range flatten(err) {
		var verr *schema.ValidationError
		if !errors.As(e, &verr) {
			continue
		}
		if verr.Reason == schema.ReasonMissing {
			missing = append(missing, verr.Key)
			continue
		}
		invalid[verr.Key] = verr.Reason
	}
	sort.Strings(missing)
	return missing, invalid
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

type mapStore map[string]string

func (m mapStore) ToMap() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m mapStore) Set(key, value string) error {
	m[key] = value
	return nil
}
