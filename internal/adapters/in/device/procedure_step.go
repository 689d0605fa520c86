package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/domain/model/study"
)

// ProcedureStepSuffix names the files the order filler drops into the
// procedure step directory.
const ProcedureStepSuffix = ".mpps.json"

// ProcedureStep is a performed procedure step message as received from a
// modality: a study instance UID and the new performed status.
type ProcedureStep struct {
	StudyInstanceUID string `json:"studyInstanceUid"`
	Status           string `json:"status"`
}

// Command validates the message and builds the command that applies it.
func (p ProcedureStep) Command() (commands.UpdatePerformedStatusCommand, error) {
	status, err := study.ParsePerformedStatus(p.Status)
	if err != nil {
		return commands.UpdatePerformedStatusCommand{}, err
	}
	return commands.NewUpdatePerformedStatusCommand(p.StudyInstanceUID, status)
}

// ReadProcedureStep decodes a procedure step file.
func ReadProcedureStep(name string) (ProcedureStep, error) {
	payload, err := os.ReadFile(name)
	if err != nil {
		return ProcedureStep{}, err
	}
	var step ProcedureStep
	if err := json.Unmarshal(payload, &step); err != nil {
		return ProcedureStep{}, fmt.Errorf("failed to decode procedure step %s: %w", filepath.Base(name), err)
	}
	return step, nil
}

// WriteProcedureStep stores step in dir under a unique name and returns the
// path. The file appears atomically.
func WriteProcedureStep(dir string, step ProcedureStep) (name string, err error) {
	payload, err := json.Marshal(step)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".mpps-*.tmp")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}

	// the temp name is already unique; reuse its random part
	base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(tmp.Name()), ".mpps-"), ".tmp")
	name = filepath.Join(dir, safeName(step.StudyInstanceUID)+"-"+base+ProcedureStepSuffix)
	if err = os.Rename(tmp.Name(), name); err != nil {
		return "", err
	}
	return name, nil
}

func safeName(uid string) string {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, uid)
}

var errDirectoryRequired = errors.New("directory is required")

func ensureDir(kind, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%s %w", kind, errDirectoryRequired)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s %s: %w", kind, dir, err)
	}
	return nil
}
