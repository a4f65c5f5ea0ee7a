package main

import (
	"context"
	"fmt"
	"strings"

	"psi-tracker/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

type catalogTable struct {
	name    string
	comment string
	columns []sdk.Column
}

// mirrorTables must match the CSV column order written by service.CatalogSync.
var mirrorTables = []catalogTable{
	{"daily_responses", "respostas diárias dos pacientes", []sdk.Column{
		{Name: "id", Type: "INT", IsPk: true, Comment: "chave primária"},
		{Name: "patient_id", Type: "INT", Comment: "id do paciente"},
		{Name: "response_date", Type: "DATE", Comment: "data da resposta no fuso de referência"},
		{Name: "questionnaire_id", Type: "VARCHAR(40)", Comment: "questionario1=PHQ-9, questionario2=GAD-7, questionario3=diário de humor"},
		{Name: "score", Type: "INT", Comment: "pontuação total"},
		{Name: "severity", Type: "VARCHAR(40)", Comment: "faixa de gravidade, N/A quando não se aplica"},
		{Name: "source", Type: "VARCHAR(20)", Comment: "origem: app ou import"},
		{Name: "created_at", Type: "DATETIME", Comment: "momento do registro"},
	}},
	{"weekly_summaries", "resumos semanais dos pacientes", []sdk.Column{
		{Name: "id", Type: "INT", IsPk: true, Comment: "chave primária"},
		{Name: "patient_id", Type: "INT", Comment: "id do paciente"},
		{Name: "week_end", Type: "DATE", Comment: "último dia da semana resumida"},
		{Name: "texto_resumo", Type: "TEXT", Comment: "resumo escrito pelo paciente"},
		{Name: "texto_expectativa", Type: "TEXT", Comment: "expectativas do paciente"},
		{Name: "narrative", Type: "TEXT", Comment: "análise para o psicólogo"},
		{Name: "narrative_source", Type: "VARCHAR(20)", Comment: "ia ou padrao"},
	}},
}

func initCatalog(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, map[string]sdk.TableID, error) {
	tables := map[string]sdk.TableID{}

	dbResp, err := client.CreateDatabase(ctx, &sdk.DatabaseCreateRequest{
		CatalogID:    catalogID,
		DatabaseName: dbName,
		Comment:      "psi-tracker",
	})
	if err != nil {
		if isDuplicate(err) {
			logger.Info("catalog: database already exists, discovering ID", "name", dbName)
			id, err := discoverDatabaseID(ctx, client, catalogID, dbName)
			return id, tables, err
		}
		return 0, nil, fmt.Errorf("create database: %w", err)
	}
	logger.Info("catalog: database created", "id", dbResp.DatabaseID)

	for _, t := range mirrorTables {
		resp, err := client.CreateTable(ctx, &sdk.TableCreateRequest{
			DatabaseID: dbResp.DatabaseID,
			Name:       t.name,
			Columns:    t.columns,
			Comment:    t.comment,
		})
		if err != nil {
			if isDuplicate(err) {
				logger.Info("catalog: table already exists, skipping", "name", t.name)
				continue
			}
			return 0, nil, fmt.Errorf("create table %s: %w", t.name, err)
		}
		tables[t.name] = resp.TableID
		logger.Info("catalog: table created", "name", t.name, "id", resp.TableID)
	}

	return dbResp.DatabaseID, tables, nil
}

func discoverDatabaseID(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, error) {
	resp, err := client.ListDatabases(ctx, &sdk.DatabaseListRequest{CatalogID: catalogID})
	if err != nil {
		return 0, fmt.Errorf("list databases: %w", err)
	}
	for _, db := range resp.List {
		if db.DatabaseName == dbName {
			logger.Info("catalog: database discovered", "id", db.DatabaseID)
			return db.DatabaseID, nil
		}
	}
	return 0, fmt.Errorf("database %s not found in catalog %d", dbName, catalogID)
}

func isDuplicate(err error) bool {
	s := strings.ToLower(err.Error())
	for _, marker := range []string{"duplicate", "already exist", "exists", "conflict"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
