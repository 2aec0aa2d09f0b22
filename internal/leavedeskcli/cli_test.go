package leavedeskcli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/leavedesk/internal/ingest"
)

func TestUsage(t *testing.T) {
	require.ErrorIs(t, execute(nil, &bytes.Buffer{}), ErrUsage)
	require.ErrorIs(t, execute([]string{"bogus"}, &bytes.Buffer{}), ErrUsage)
	require.ErrorIs(t, execute([]string{"preview"}, &bytes.Buffer{}), ErrUsage)
}

func TestSetupWritesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	var out bytes.Buffer
	require.NoError(t, execute([]string{"setup", "--env-file", path, "--api-url", "https://api.example.com"}, &out))
	require.Contains(t, out.String(), "wrote")

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", values["API_BASE_URL"])
	require.GreaterOrEqual(t, len(values["LEAVEDESK_SESSION_SECRET"]), 12)

	require.Error(t, execute([]string{"setup", "--env-file", path}, &out))
	require.NoError(t, execute([]string{"setup", "--env-file", path, "--force"}, &out))
}

func TestSetupRejectsShortSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.Error(t, execute([]string{"setup", "--env-file", path, "--secret", "short"}, &bytes.Buffer{}))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestTemplate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, execute([]string{"template", "-o", "-"}, &out))
	require.Equal(t, string(ingest.Template()), out.String())

	path := filepath.Join(t.TempDir(), ingest.TemplateFileName)
	require.NoError(t, execute([]string{"template", "-o", path}, &bytes.Buffer{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, ingest.Template(), data)
}

func TestPreview(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "User ID"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Nombre"))
	require.NoError(t, f.SetCellValue(sheet, "A2", 15))
	require.NoError(t, f.SetCellValue(sheet, "B2", "Ana"))
	path := filepath.Join(t.TempDir(), "leaves.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	var out bytes.Buffer
	require.NoError(t, execute([]string{"preview", path}, &out))
	require.Equal(t, "User ID\tNombre\n15\tAna\n", out.String())

	empty := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	out.Reset()
	require.NoError(t, execute([]string{"preview", empty}, &out))
	require.Equal(t, "no rows\n", out.String())
}
