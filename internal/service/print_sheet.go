package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/pkg/export"
)

const sheetDateLayout = "2006-01-02"

// PrintSheet lays out a printed record for the PDF exporter.
func PrintSheet(result *PrintResult, printedBy string) export.Sheet {
	record := result.Record
	subject := []export.Field{{Label: "Type", Value: string(record.Type)}}
	if record.Type == models.RecordTypeCompany {
		subject = append(subject, export.Field{Label: "Company", Value: record.CompanyName})
	} else {
		subject = append(subject,
			export.Field{Label: "First name", Value: record.FirstName},
			export.Field{Label: "Middle name", Value: record.MiddleName},
			export.Field{Label: "Last name", Value: record.LastName},
		)
	}

	filed := ""
	if record.DateFiled != nil {
		filed = record.DateFiled.Format(sheetDateLayout)
	}
	billing := "Not billed"
	if result.Billed {
		billing = fmt.Sprintf("%d credit(s) charged, %d remaining", result.Fee, result.RemainingCredit)
	}

	return export.Sheet{
		Title:    "Negative Record",
		Subtitle: fmt.Sprintf("Record #%d  Case %s", record.ID, record.CaseNumber),
		Sections: []export.Section{
			{Heading: "Subject", Fields: subject},
			{Heading: "Case", Fields: []export.Field{
				{Label: "Case number", Value: record.CaseNumber},
				{Label: "Case type", Value: record.CaseType},
				{Label: "Plaintiff", Value: record.Plaintiff},
				{Label: "Court", Value: record.Court},
				{Label: "Branch", Value: record.Branch},
				{Label: "City", Value: record.City},
				{Label: "Date filed", Value: filed},
			}},
			{Heading: "Details", Fields: []export.Field{
				{Label: "Details", Value: record.Details},
				{Label: "Source", Value: record.Source},
			}},
		},
		Footer: fmt.Sprintf("Printed by %s (user %s, client %s) on %s. %s.",
			printedBy,
			strconv.FormatInt(result.Meta.PrintedBy, 10),
			strconv.FormatInt(result.Meta.ClientID, 10),
			result.Meta.PrintedAt.Format(time.RFC3339),
			billing),
	}
}
