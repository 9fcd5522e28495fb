package typegen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/typegen/pkg/schema"
)

const fixture = "pkg/generator/testdata/bungie.yaml"

func TestValidateSpecMissingFile(t *testing.T) {
	assert.Error(t, ValidateSpec(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestGenerate(t *testing.T) {
	out := t.TempDir()
	report, err := Generate(context.Background(), GenerateOptions{
		Spec:   fixture,
		Type:   "php",
		OutDir: out,
	})
	// the fixture carries one schema that cannot be classified
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnknownSchemaType)
	require.NotNil(t, report)
	require.Len(t, report.Targets, 1)
	assert.Equal(t, 7, report.Targets[0].Models)
	assert.FileExists(t, filepath.Join(out, "User", "GeneralUser.php"))
}

func TestClassify(t *testing.T) {
	results, err := Classify(fixture, "")
	require.NoError(t, err)
	require.Len(t, results, 11)
	assert.Equal(t, "BungieMembershipType", results[0].Identifier)
	assert.Equal(t, schema.Enum, results[0].Category)
	assert.Error(t, results[len(results)-1].Err)
}
