// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, per-order serialization,
// transaction management, worklist synchronization and persistence.
package commands

import (
	"context"

	"radiology/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure an order, its encounter and its study are written as one unit.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// EncounterRepoFactory provides access to encounter repository within a transaction.
	EncounterRepoFactory interface {
		EncounterRepository() ports.EncounterRepository
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// StudyRepoFactory provides access to study repository within a transaction.
	StudyRepoFactory interface {
		StudyRepository() ports.StudyRepository
	}

	// ReportRepoFactory provides access to report repository within a transaction.
	ReportRepoFactory interface {
		ReportRepository() ports.ReportRepository
	}

	// StudyUoW manages transactions for device callbacks that only touch studies.
	StudyUoW interface {
		TxManager
		StudyRepoFactory
	}

	// StudyUoWFactory creates new study unit of work instances.
	StudyUoWFactory interface {
		Create() StudyUoW
	}

	// ReportUoW manages transactions for report fulfillment.
	// The study is read to resolve the owning order and its performed status.
	ReportUoW interface {
		TxManager
		StudyRepoFactory
		ReportRepoFactory
	}

	// ReportUoWFactory creates new report unit of work instances.
	ReportUoWFactory interface {
		Create() ReportUoW
	}

	// UoW manages transactions across the order/study pair and its reports.
	// Used by lifecycle transitions.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   studyRepo := uow.StudyRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		EncounterRepoFactory
		OrderRepoFactory
		StudyRepoFactory
		ReportRepoFactory
	}

	// UoWFactory creates new unit of work instances for lifecycle transitions.
	UoWFactory interface {
		Create() UoW
	}
)
