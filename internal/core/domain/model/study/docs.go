// Package study models the imaging procedure bound to a radiology order.
//
// A Study is created together with its order at placement time and carries the
// modality, requested priority and schedule sent to the modality worklist. It also
// owns the worklist synchronization status of the pair and the study instance UID
// assigned on the first successful worklist save.
//
// Key business rules:
//   - A study references exactly one order
//   - The study instance UID, once assigned, is never reassigned
//   - Performed status is reported by the device: IN_PROGRESS, then COMPLETED or DISCONTINUED
//   - A study that has been performed can no longer be rescheduled
package study
