package study

import (
	"fmt"
	"strings"

	"radiology/internal/pkg/errs"
)

// Modality is the imaging device category of a study, identified by its DICOM code.
type Modality int

const (
	UnknownModality Modality = iota
	CR
	CT
	DX
	MG
	MR
	NM
	OT
	PT
	RF
	US
	XA
)

type modalityDisplay struct {
	code     string
	fullName string
}

func getModalityDisplay() map[Modality]modalityDisplay {
	return map[Modality]modalityDisplay{
		CR: {"CR", "Computed Radiography"},
		CT: {"CT", "Computed Tomography"},
		DX: {"DX", "Digital Radiography"},
		MG: {"MG", "Mammography"},
		MR: {"MR", "Magnetic Resonance"},
		NM: {"NM", "Nuclear Medicine"},
		OT: {"OT", "Other"},
		PT: {"PT", "Positron Emission Tomography"},
		RF: {"RF", "Radio Fluoroscopy"},
		US: {"US", "Ultrasound"},
		XA: {"XA", "X-Ray Angiography"},
	}
}

// ParseModality resolves a DICOM modality code, ignoring case.
func ParseModality(code string) (Modality, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for m, d := range getModalityDisplay() {
		if d.code == code {
			return m, nil
		}
	}
	return UnknownModality, errs.NewValueIsInvalidErrorWithCause("modality", fmt.Errorf("%q is not a valid modality", code))
}

func (m Modality) Validate() error {
	if _, ok := getModalityDisplay()[m]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("modality", fmt.Errorf("%d is not a valid modality", m))
	}
	return nil
}

// String returns the DICOM code.
func (m Modality) String() string {
	if d, ok := getModalityDisplay()[m]; ok {
		return d.code
	}
	return "UNKNOWN"
}

// FullName returns the human-readable modality name.
func (m Modality) FullName() string {
	if d, ok := getModalityDisplay()[m]; ok {
		return d.fullName
	}
	return "Unknown"
}
