package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestService_Read(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(existing, []byte("dataset: sales"), 0o644))
	csv := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(csv, []byte("region,units\nNorth,10\nSouth,20\nEast,30\n"), 0o644))

	testCases := []struct {
		description string
		path        string
		startLine   int
		lineCount   int
		expect      string
		expectErr   string
	}{
		{description: "existing file", path: existing, expect: "dataset: sales"},
		{description: "head", path: csv, lineCount: 2, expect: "region,units\nNorth,10"},
		{description: "line range", path: csv, startLine: 3, lineCount: 1, expect: "South,20"},
		{description: "missing file", path: filepath.Join(dir, "missing.txt"), expectErr: "file not found at path"},
	}
	srv := New(afs.New())
	exec, err := srv.Method("FileReader")
	require.NoError(t, err)
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			output := &ReadOutput{}
			err := exec(context.Background(), &ReadInput{Path: testCase.path, StartLine: testCase.startLine, LineCount: testCase.lineCount}, output)
			if testCase.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, output.Text())
		})
	}
}

func TestService_Write(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "report.md")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	testCases := []struct {
		description string
		input       *WriteInput
		expect      string
		expectErr   string
	}{
		{description: "new file in nested folder", input: &WriteInput{Path: filepath.Join(dir, "out", "final.md"), Content: "# Report"}, expect: "# Report"},
		{description: "overwrite requested", input: &WriteInput{Path: existing, Content: "new", Overwrite: true}, expect: "new"},
		{description: "existing without overwrite", input: &WriteInput{Path: existing, Content: "other"}, expectErr: "already exists"},
	}
	srv := New(nil)
	exec, err := srv.Method("filewriter")
	require.NoError(t, err)
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			output := &WriteOutput{}
			err := exec(context.Background(), testCase.input, output)
			if testCase.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.expectErr)
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(testCase.input.Path)
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, string(data))
			assert.Equal(t, "Content successfully written to "+testCase.input.Path, output.Text())
		})
	}
}

func TestService_Method(t *testing.T) {
	srv := New(nil)
	assert.Equal(t, "file", srv.Name())
	assert.Len(t, srv.Methods(), 2)
	_, err := srv.Method("delete")
	assert.EqualError(t, err, "method not found: delete")
}
