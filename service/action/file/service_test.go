package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/approval/memory"
	"github.com/viant/qgate/service/storage"
)

func TestService_Save(t *testing.T) {
	type testCase struct {
		name       string
		approve    bool
		picker     storage.Picker
		input      *SaveInput
		expectFile string
		expectErr  string
		expectKind fault.Kind
	}
	cancelled := storage.PickerFunc(func(ctx context.Context, file *storage.File) (string, error) {
		return "", storage.ErrCancelled
	})
	tests := []testCase{
		{
			name:       "blob object",
			approve:    true,
			input:      &SaveInput{Filename: "notes", Blob: map[string]interface{}{"type": "text/plain", "data64": "aGk="}},
			expectFile: "notes.txt",
		},
		{
			name:       "mime type field with filename extension",
			approve:    true,
			input:      &SaveInput{Filename: "data.qdn", Blob: "aGk=", MimeType: "application/x-unknown"},
			expectFile: "data.qdn",
		},
		{
			name:       "no mime type",
			approve:    true,
			input:      &SaveInput{Filename: "a.txt", Blob: "aGk="},
			expectErr:  "A mimeType could not be derived",
			expectKind: fault.KindInvalidInput,
		},
		{
			name:       "no extension",
			approve:    true,
			input:      &SaveInput{Filename: "blob", Blob: "aGk=", MimeType: "application/x-unknown"},
			expectErr:  "A file extension could not be derived",
			expectKind: fault.KindInvalidInput,
		},
		{
			name:       "declined",
			input:      &SaveInput{Filename: "a.txt", Blob: "aGk=", MimeType: "text/plain"},
			expectErr:  "User declined request",
			expectKind: fault.KindDeclined,
		},
		{
			name:       "picker cancelled",
			approve:    true,
			picker:     cancelled,
			input:      &SaveInput{Filename: "a.txt", Blob: "aGk=", MimeType: "text/plain"},
			expectErr:  "User declined the download",
			expectKind: fault.KindDeclined,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			approvals := memory.New()
			if tc.approve {
				defer approval.AutoApprove(ctx, approvals, time.Millisecond)()
			} else {
				defer approval.AutoReject(ctx, approvals, "", time.Millisecond)()
			}
			dir := t.TempDir()
			var options []storage.Option
			if tc.picker != nil {
				options = append(options, storage.WithPicker(tc.picker))
			}
			svc := New(approval.NewGate(approvals), storage.New(dir, options...))
			output := &SaveOutput{}
			err := svc.Save(ctx, tc.input, output)
			if tc.expectErr != "" {
				assert.EqualError(t, err, tc.expectErr)
				assert.Equal(t, tc.expectKind, fault.KindOf(err))
				entries, _ := os.ReadDir(dir)
				assert.Empty(t, entries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, true, output.Result())
			assert.Equal(t, tc.expectFile, filepath.Base(output.URL))
			data, err := os.ReadFile(filepath.Join(dir, tc.expectFile))
			require.NoError(t, err)
			assert.Equal(t, "hi", string(data))
		})
	}
}
