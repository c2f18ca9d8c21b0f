package registry

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/cellmap/pkg/constants"
	"github.com/agentstation/cellmap/pkg/errors"
)

// Write writes the registry as a tab-separated table with the exact Header.
// Field values never contain tabs or newlines; Write enforces that by
// replacing them with spaces.
func Write(w io.Writer, rows []Row) error {
	bw := bufio.NewWriterSize(w, constants.WriteBufferSize)

	if _, err := bw.WriteString(strings.Join(Header, "\t") + "\n"); err != nil {
		return errors.WrapIO("write", "registry header", err)
	}
	for i := range rows {
		vals := rows[i].Values()
		for j, v := range vals {
			vals[j] = sanitizeField(v)
		}
		if _, err := bw.WriteString(strings.Join(vals, "\t") + "\n"); err != nil {
			return errors.WrapIO("write", "registry row", err)
		}
	}
	return bw.Flush()
}

// Save writes the registry to path atomically: the file appears complete or
// not at all. The temp file lives in the target directory so the rename
// stays on one filesystem.
func Save(path string, rows []Row) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".registry-*.tsv")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if err := Write(tempFile, rows); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return err
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// Read parses a registry table, validating the exact header and the
// unique-code invariant. Any structural violation is malformed input: no
// partial table is returned.
func Read(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, constants.MaxLineBuffer), constants.MaxLineBuffer)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.WrapParse("tsv", "", err)
		}
		return nil, errors.NewParseError("tsv", "", 0, "empty registry file")
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []Row
	line := 1
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		vals := strings.Split(text, "\t")
		if len(vals) != len(Header) {
			return nil, errors.NewParseError("tsv", "", line,
				fmt.Sprintf("expected %d columns, found %d", len(Header), len(vals)))
		}
		rows = append(rows, rowFromValues(vals))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse("tsv", "", err)
	}

	table, err := NewTable(rows)
	if err != nil {
		return nil, errors.NewParseError("tsv", "", 0, err.Error())
	}
	return table, nil
}

// Load opens and parses a registry file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := Read(f)
	if err != nil {
		var perr *errors.ParseError
		if stderrors.As(err, &perr) && perr.File == "" {
			perr.File = path
		}
		return nil, err
	}
	return table, nil
}

// checkHeader verifies the exact interchange header.
func checkHeader(got []string) error {
	if len(got) != len(Header) {
		return errors.NewParseError("tsv", "", 1,
			fmt.Sprintf("expected %d header columns, found %d", len(Header), len(got)))
	}
	for i, want := range Header {
		if got[i] != want {
			return errors.NewParseError("tsv", "", 1,
				fmt.Sprintf("header column %d: expected %q, found %q", i+1, want, got[i]))
		}
	}
	return nil
}

// sanitizeField keeps field values single-line and tab-free.
func sanitizeField(s string) string {
	if !strings.ContainsAny(s, "\t\n\r") {
		return s
	}
	replacer := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	return replacer.Replace(s)
}
