package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/resolvit"
	"github.com/poiesic/resolvit/ingestion"
)

var bundle = []string{
	`{"resourceType":"CodeSystem","url":"http://loinc.org","version":"2.77","name":"LOINC","title":"Logical Observation Identifiers Names and Codes","count":12}`,
	`{"code":"2345-7","display":"Glucose [Mass/volume] in Serum or Plasma","designation":[{"value":"Blood sugar"},{"value":"Glucose SerPl-mCnc","use":{"code":"short-name"}}]}`,
	`{"code":"2339-0","display":"Glucose [Mass/volume] in Blood","designation":[{"value":"Blood glucose"}]}`,
	`{"code":"4548-4","display":"Hemoglobin A1c/Hemoglobin.total in Blood","designation":[{"value":"HbA1c"},{"value":"Glycated hemoglobin"}]}`,
	`{"code":"718-7","display":"Hemoglobin [Mass/volume] in Blood","designation":[{"value":"Hgb Bld-mCnc","use":{"code":"short-name"}}]}`,
	`{"code":"2951-2","display":"Sodium [Moles/volume] in Serum or Plasma","designation":[{"value":"Sodium SerPl-sCnc","use":{"code":"short-name"}}]}`,
	`{"code":"2823-3","display":"Potassium [Moles/volume] in Serum or Plasma","designation":[{"value":"Potassium SerPl-sCnc","use":{"code":"short-name"}}]}`,
	`{"code":"2160-0","display":"Creatinine [Mass/volume] in Serum or Plasma"}`,
	`{"code":"2093-3","display":"Cholesterol [Mass/volume] in Serum or Plasma","designation":[{"value":"Total cholesterol"}]}`,
	`{"code":"2571-8","display":"Triglyceride [Mass/volume] in Serum or Plasma"}`,
	`{"code":"3016-3","display":"Thyrotropin [Units/volume] in Serum or Plasma","designation":[{"value":"TSH"}]}`,
	`{"code":"6690-2","display":"Leukocytes [#/volume] in Blood by Automated count","designation":[{"value":"White blood cell count"},{"value":"WBC"}]}`,
	`{"code":"777-3","display":"Platelets [#/volume] in Blood by Automated count","designation":[{"value":"Platelet count"}]}`,
	`{"resourceType":"CodeSystem","url":"http://snomed.info/sct","version":"20240301","name":"SNOMED_CT","title":"SNOMED Clinical Terms","count":12}`,
	`{"code":"73211009","display":"Diabetes mellitus","designation":[{"value":"Diabetes"}]}`,
	`{"code":"46635009","display":"Diabetes mellitus type 1","designation":[{"value":"Type 1 diabetes"},{"value":"Insulin dependent diabetes mellitus"}]}`,
	`{"code":"44054006","display":"Diabetes mellitus type 2","designation":[{"value":"Type 2 diabetes"},{"value":"Non-insulin dependent diabetes mellitus"}]}`,
	`{"code":"38341003","display":"Hypertensive disorder, systemic arterial","designation":[{"value":"Hypertension"},{"value":"High blood pressure"}]}`,
	`{"code":"195967001","display":"Asthma"}`,
	`{"code":"22298006","display":"Myocardial infarction","designation":[{"value":"Heart attack"}]}`,
	`{"code":"233604007","display":"Pneumonia"}`,
	`{"code":"13645005","display":"Chronic obstructive lung disease","designation":[{"value":"COPD"}]}`,
	`{"code":"709044004","display":"Chronic kidney disease","designation":[{"value":"CKD"}]}`,
	`{"code":"40930008","display":"Hypothyroidism"}`,
	`{"code":"55822004","display":"Hyperlipidemia","designation":[{"value":"High cholesterol"}]}`,
	`{"code":"271737000","display":"Anemia"}`,
	`{"resourceType":"CodeSystem","url":"http://terminology.hl7.org/CodeSystem/v3-MaritalStatus","version":"3.0.0","name":"MaritalStatus","title":"Marital Status","count":10}`,
	`{"code":"A","display":"Annulled"}`,
	`{"code":"D","display":"Divorced"}`,
	`{"code":"I","display":"Interlocutory"}`,
	`{"code":"L","display":"Legally Separated"}`,
	`{"code":"M","display":"Married"}`,
	`{"code":"P","display":"Polygamous"}`,
	`{"code":"S","display":"Never Married","designation":[{"value":"Single"}]}`,
	`{"code":"T","display":"Domestic partner"}`,
	`{"code":"U","display":"Unmarried"}`,
	`{"code":"W","display":"Widowed","designation":[{"value":"Widow"}]}`,
}

var (
	dataDir      = flag.String("data", "./terminology_db", "terminology data directory")
	seedFileName = flag.String("src", "", "NDJSON bundle to load instead of the demo corpus")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	engine, err := resolvit.New(*dataDir)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	loader, err := engine.NewLoader(ingestion.WithProgress(os.Stderr, 10))
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	// Determine source of seed data
	var summary *ingestion.Summary
	if seedFileName != nil && *seedFileName != "" {
		summary, err = loader.LoadFile(ctx, *seedFileName)
	} else {
		summary, err = loader.LoadStream(ctx, strings.NewReader(strings.Join(bundle, "\n")))
	}
	if err != nil {
		panic(err)
	}

	slog.Info("seed complete",
		"systems", summary.Systems,
		"concepts", summary.Concepts,
		"designations", summary.Designations,
		"skipped", summary.Skipped)
}
