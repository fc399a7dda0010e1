package provisioning

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_FullRun(t *testing.T) {
	t.Parallel()

	tables := &mockTableService{}
	dashboards := &mockDashboardService{}
	templates := &mockTemplateStore{}
	requester := uuid.New()

	tableReady, terr := NewPipeline(weightLogDefinition(), requester).CreateTable(context.Background(), tables)
	require.Nil(t, terr)
	assert.Equal(t, "b_default", tableReady.BaseID)
	assert.Equal(t, "md_table1", tableReady.TableID)
	assert.Equal(t, "nc_p_table1", tableReady.TableName)
	assert.Equal(t, "Weight Log", tables.createdTitle)

	formReady, ferr := tableReady.CreateForm(context.Background(), tables)
	require.Nil(t, ferr)
	assert.Equal(t, "Weight Log - Entry Form", tables.formTitle)
	assert.Equal(t, "vw_form1", formReady.FormViewID)
	assert.Equal(t, "share-token-1", formReady.FormShareToken)

	dashboardReady, derr := formReady.CreateDashboard(context.Background(), dashboards)
	require.Nil(t, derr)
	assert.Equal(t, "dash-uid-1", dashboardReady.DashboardUID)
	assert.Equal(t, "/d/dash-uid-1/weight-log", dashboardReady.DashboardURL)

	tpl, err := dashboardReady.Register(context.Background(), templates)
	require.NoError(t, err)
	assert.Equal(t, "Weight Log", tpl.Name)
	assert.Equal(t, requester, tpl.CreatedBy)
	assert.Equal(t, "md_table1", tpl.NocoDBTableID)
	assert.Equal(t, "share-token-1", tpl.NocoDBFormID)
	assert.Equal(t, "dash-uid-1", tpl.GrafanaDashboardUID)
	assert.JSONEq(t, `[
		{"name":"weight","field_type":"number","unit":"kg"},
		{"name":"mood","field_type":"text"},
		{"name":"measured_at","field_type":"date"}
	]`, string(tpl.Fields))
}

func TestPipeline_TableStageError(t *testing.T) {
	t.Parallel()

	tables := &mockTableService{failCreate: true}
	def := weightLogDefinition()

	_, terr := NewPipeline(def, uuid.New()).CreateTable(context.Background(), tables)
	require.NotNil(t, terr)
	assert.Equal(t, "table", terr.Stage)
	assert.Equal(t, def.Name, terr.State.Definition.Name)
	assert.ErrorContains(t, terr, "table create down")
}

func TestPipeline_BaseLookupError(t *testing.T) {
	t.Parallel()

	tables := &mockTableService{failBase: true}

	_, terr := NewPipeline(weightLogDefinition(), uuid.New()).CreateTable(context.Background(), tables)
	require.NotNil(t, terr)
	assert.Equal(t, "table", terr.Stage)
	assert.Zero(t, tables.createCalls)
}

func TestPipeline_FormStageErrorCarriesTableState(t *testing.T) {
	t.Parallel()

	tables := &mockTableService{}
	tableReady, terr := NewPipeline(weightLogDefinition(), uuid.New()).CreateTable(context.Background(), tables)
	require.Nil(t, terr)

	tables.failForm = true
	_, ferr := tableReady.CreateForm(context.Background(), tables)
	require.NotNil(t, ferr)
	assert.Equal(t, "form", ferr.Stage)
	// The carried state still holds the table id needed for compensation.
	assert.Equal(t, "md_table1", ferr.State.TableID)
}

func TestPipeline_DashboardStageErrorCarriesFormState(t *testing.T) {
	t.Parallel()

	tables := &mockTableService{}
	dashboards := &mockDashboardService{failCreate: true}

	tableReady, terr := NewPipeline(weightLogDefinition(), uuid.New()).CreateTable(context.Background(), tables)
	require.Nil(t, terr)
	formReady, ferr := tableReady.CreateForm(context.Background(), tables)
	require.Nil(t, ferr)

	_, derr := formReady.CreateDashboard(context.Background(), dashboards)
	require.NotNil(t, derr)
	assert.Equal(t, "dashboard", derr.Stage)
	assert.Equal(t, "md_table1", derr.State.TableID)
	assert.Equal(t, "share-token-1", derr.State.FormShareToken)
}

func TestStageError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := assert.AnError
	err := stageErr("table", Unstarted{}, inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "table stage failed")
}
