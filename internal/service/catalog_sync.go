package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"psi-tracker/internal/logger"
	"psi-tracker/internal/model"
	"psi-tracker/internal/questionnaire"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

// column order of the generated CSV files
var (
	responseColumns = []sdk.FileAndTableColumnMapping{
		{TableColumn: "id", Column: "id", ColNumInFile: 1},
		{TableColumn: "patient_id", Column: "patient_id", ColNumInFile: 2},
		{TableColumn: "response_date", Column: "response_date", ColNumInFile: 3},
		{TableColumn: "questionnaire_id", Column: "questionnaire_id", ColNumInFile: 4},
		{TableColumn: "score", Column: "score", ColNumInFile: 5},
		{TableColumn: "severity", Column: "severity", ColNumInFile: 6},
		{TableColumn: "source", Column: "source", ColNumInFile: 7},
		{TableColumn: "created_at", Column: "created_at", ColNumInFile: 8},
	}
	summaryColumns = []sdk.FileAndTableColumnMapping{
		{TableColumn: "id", Column: "id", ColNumInFile: 1},
		{TableColumn: "patient_id", Column: "patient_id", ColNumInFile: 2},
		{TableColumn: "week_end", Column: "week_end", ColNumInFile: 3},
		{TableColumn: "texto_resumo", Column: "texto_resumo", ColNumInFile: 4},
		{TableColumn: "texto_expectativa", Column: "texto_expectativa", ColNumInFile: 5},
		{TableColumn: "narrative", Column: "narrative", ColNumInFile: 6},
		{TableColumn: "narrative_source", Column: "narrative_source", ColNumInFile: 7},
	}
)

// CatalogSync mirrors stored rows into MOI catalog tables so clinicians can
// query them in natural language. Failures are logged and never surface.
type CatalogSync struct {
	raw        *sdk.RawClient
	sdk        *sdk.SDKClient
	databaseID sdk.DatabaseID
	responses  sdk.TableID
	summaries  sdk.TableID
}

func NewCatalogSync(raw *sdk.RawClient, databaseID, responsesTable, summariesTable int64) *CatalogSync {
	return &CatalogSync{
		raw:        raw,
		sdk:        sdk.NewSDKClient(raw),
		databaseID: sdk.DatabaseID(databaseID),
		responses:  sdk.TableID(responsesTable),
		summaries:  sdk.TableID(summariesTable),
	}
}

func (s *CatalogSync) SyncDailyResponse(ctx context.Context, r *model.DailyResponse) {
	s.importCSV(ctx, s.responses, csvLine(responseRow(r)), fmt.Sprintf("response_%d.csv", r.ID), responseColumns)
}

func (s *CatalogSync) SyncWeeklySummary(ctx context.Context, ws *model.WeeklySummary) {
	s.importCSV(ctx, s.summaries, csvLine(summaryRow(ws)), fmt.Sprintf("summary_%d.csv", ws.ID), summaryColumns)
}

func responseRow(r *model.DailyResponse) []string {
	severity := severityOf(r.QuestionnaireID, r.Score)
	return []string{
		strconv.Itoa(r.ID),
		strconv.Itoa(r.PatientID),
		r.ResponseDate,
		r.QuestionnaireID,
		strconv.Itoa(r.Score),
		severity,
		r.Source,
		r.CreatedAt.Format(time.DateTime),
	}
}

func summaryRow(ws *model.WeeklySummary) []string {
	return []string{
		strconv.Itoa(ws.ID),
		strconv.Itoa(ws.PatientID),
		ws.WeekEnd,
		ws.TextoResumo,
		ws.TextoExpectativa,
		ws.Narrative,
		ws.NarrativeSource,
	}
}

func severityOf(questionnaireID string, score int) string {
	if p, ok := questionnaire.ScoringFor(questionnaireID); ok {
		if b, ok := p.Severity(score); ok {
			return b.Label
		}
	}
	return questionnaire.NoSeverity
}

func csvLine(fields []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(fields)
	w.Flush()
	return buf.String()
}

func (s *CatalogSync) importCSV(ctx context.Context, tableID sdk.TableID, data, fileName string, columns []sdk.FileAndTableColumnMapping) {
	log := logger.Ctx(ctx)
	if tableID == 0 {
		log.Debug("catalog.skip", "file", fileName)
		return
	}
	resp, err := s.raw.UploadLocalFile(ctx, bytes.NewReader([]byte(data)), fileName, []sdk.FileMeta{{Filename: fileName, Path: "/"}})
	if err != nil {
		log.Warn("catalog.upload_failed", "table", tableID, "err", err)
		return
	}
	if len(resp.ConnFileIds) == 0 {
		log.Warn("catalog.no_conn_file_ids", "table", tableID)
		return
	}

	_, err = s.sdk.ImportLocalFileToTable(ctx, &sdk.TableConfig{
		ConnFileIDs:      resp.ConnFileIds,
		NewTable:         false,
		DatabaseID:       s.databaseID,
		TableID:          tableID,
		IsColumnName:     false,
		RowStart:         1,
		Conflict:         1,
		ExistedTable:     columns,
		ExistedTableOpts: sdk.ExistedTableOptions{Method: sdk.ExistedTableOptionAppend},
	})
	if err != nil {
		log.Warn("catalog.import_failed", "table", tableID, "err", err)
		return
	}
	log.Info("catalog.synced", "table", tableID, "file", fileName)
}
