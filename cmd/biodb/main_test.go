package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/config"
	"github.com/safing/biodb/table"
)

func TestWriteTable(t *testing.T) {
	t.Parallel()

	tbl := table.New("accession", "id")
	require.NoError(t, tbl.Append("RF00001", "5S_rRNA"))

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, tbl, "tsv"))
	assert.Equal(t, "accession\tid\nRF00001\t5S_rRNA\n", buf.String())

	buf.Reset()
	require.NoError(t, writeTable(&buf, tbl, "JSON"))
	assert.JSONEq(t, `[{"accession":"RF00001","id":"5S_rRNA"}]`, buf.String())

	assert.Error(t, writeTable(&buf, tbl, "xml"))
}

func TestRegisterOptions(t *testing.T) {
	t.Parallel()

	require.NoError(t, registerOptions())
	require.NoError(t, registerOptions())

	option, err := config.GetOption(CfgRfamMirrorsKey)
	require.NoError(t, err)
	assert.Equal(t, config.OptTypeStringArray, option.OptType)
	assert.Equal(t, "fstree", cfgStorageType())
	assert.Equal(t, "CURRENT", cfgRfamVersion())
}
