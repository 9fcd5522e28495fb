package generator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/typegen/pkg/generator/php"
	"github.com/blimu-dev/typegen/pkg/naming"
	"github.com/blimu-dev/typegen/pkg/spec"
	"github.com/blimu-dev/typegen/pkg/typing"
)

const fixturePath = "testdata/bungie.yaml"

func loadFixture(t *testing.T) *spec.Document {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	doc, err := spec.Decode(data)
	require.NoError(t, err)
	return doc
}

func decode(t *testing.T, src string) *spec.Document {
	t.Helper()
	doc, err := spec.Decode([]byte(src))
	require.NoError(t, err)
	return doc
}

func phpProjector() *typing.Projector {
	return typing.New(php.Dialect{}, naming.New(""))
}
