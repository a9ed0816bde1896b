package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JaimeStill/pashuvision/internal/registrations"
)

// ExportFilename is the suggested download name for WriteCSV output.
const ExportFilename = "pashuvision_registrations.csv"

var exportHeader = []string{
	"Registration ID", "Timestamp", "Sync Status", "Owner Name", "Owner Mobile", "Owner ID Type", "Owner ID Number",
	"Owner State", "Owner District", "Owner Village", "Animal UID", "Species", "Sex", "Age", "Breed Name",
	"Confidence", "AI Analysis Status", "AI Reasoning", "Milk Yield Potential", "Care Notes", "AI Error",
}

// WriteCSV writes one row per animal of regs with CRLF line endings.
// Drafts are skipped.
func WriteCSV(w io.Writer, regs []registrations.Registration) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, reg := range regs {
		if !reg.Completed() {
			continue
		}
		syncStatus := "Pending"
		if reg.Synced {
			syncStatus = "Synced"
		}

		for _, animal := range reg.Animals {
			ai := animal.AIResult
			status, aiErr := "Success", ""
			if ai.Error != nil {
				status, aiErr = "Failed", *ai.Error
			}

			row := []string{
				reg.ID,
				reg.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
				syncStatus,
				reg.Owner.Name,
				reg.Owner.Mobile,
				reg.Owner.IDType,
				reg.Owner.IDNumber,
				reg.Owner.State,
				reg.Owner.District,
				reg.Owner.Village,
				animal.ID,
				animal.Species,
				animal.Sex,
				animal.AgeValue + " " + animal.AgeUnit,
				ai.BreedName,
				strconv.Itoa(ai.Confidence),
				status,
				ai.Reasoning.En,
				ai.MilkYieldPotential.En,
				ai.CareNotes.En,
				aiErr,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row %s: %w", reg.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
