package seed

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/auth"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/store"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/testdb"
)

var quiet = log.New(io.Discard, "", 0)

const catalogCSV = `name,code,group_name,stock,price,how_to_use,side_effects
Paracetamol,MED-001,Analgesic,120,5000,3x1 sesudah makan,Mual
Amoxicillin,MED-002,Antibiotic,80,12000,,
,MED-003,Analgesic,1,100,,
Broken,MED-004,Analgesic,many,100,,
Vitamin C,MED-005,,10,2500.50,,
`

func TestImportCSV(t *testing.T) {
	st := store.New(testdb.New(t), nil)
	ctx := context.Background()
	_, err := st.CreateGroup(ctx, "Analgesic")
	require.NoError(t, err)

	res, err := ImportCSV(ctx, st, strings.NewReader(catalogCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Groups)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "row 4")

	meds, err := st.ListMedicines(ctx, store.MedicineFilter{})
	require.NoError(t, err)
	require.Len(t, meds, 3)
	assert.Equal(t, "Amoxicillin", meds[0].Name)
	assert.Equal(t, "Antibiotic", meds[0].GroupName)
	assert.Equal(t, "General", meds[2].GroupName)
	assert.Equal(t, "2500.5", meds[2].Price.String())

	names, err := st.ListGroupNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Analgesic", "Antibiotic", "General"}, names)
}

func TestImportCSV_MissingHeader(t *testing.T) {
	st := store.New(testdb.New(t), nil)
	_, err := ImportCSV(context.Background(), st, strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImportXLSX(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Medicines")
	require.NoError(t, err)
	for _, values := range [][]string{
		{"name", "code", "group_name", "stock", "price"},
		{"Cetirizine", "MED-010", "Antihistamine", "45", "4000"},
	} {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetValue(v)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	st := store.New(testdb.New(t), nil)
	res, err := ImportXLSX(context.Background(), st, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	meds, err := st.ListMedicines(context.Background(), store.MedicineFilter{Group: "Antihistamine"})
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, int64(45), meds[0].Stock)
}

func TestImportXLSX_NotAWorkbook(t *testing.T) {
	st := store.New(testdb.New(t), nil)
	_, err := ImportXLSX(context.Background(), st, []byte("plain text"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadMedicinesFile_OnlyIntoEmptyCatalog(t *testing.T) {
	st := store.New(testdb.New(t), nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "medicines.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalogCSV), 0o600))

	require.NoError(t, LoadMedicinesFile(ctx, st, path, quiet))
	n, err := st.CountMedicines(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, LoadMedicinesFile(ctx, st, path, quiet))
	n, err = st.CountMedicines(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestLoadMedicinesFile_MissingFile(t *testing.T) {
	st := store.New(testdb.New(t), nil)
	assert.NoError(t, LoadMedicinesFile(context.Background(), st, filepath.Join(t.TempDir(), "nope.csv"), quiet))
}

func TestEnsureAdmin(t *testing.T) {
	st := store.New(testdb.New(t), nil)
	ctx := context.Background()

	require.NoError(t, EnsureAdmin(ctx, st, "admin@pharmgate.local", "s3cret", quiet))
	u, err := st.GetUserByEmail(ctx, "admin@pharmgate.local")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, auth.CheckPassword(u.Password, "s3cret"))

	require.NoError(t, EnsureAdmin(ctx, st, "admin@pharmgate.local", "other", quiet))
	u, err = st.GetUserByEmail(ctx, "admin@pharmgate.local")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(u.Password, "s3cret"))
}
