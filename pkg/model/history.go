package model

// HistoryCapacity bounds the number of records kept in the local history.
const HistoryCapacity = 5

// HistoryLog is an ordered sequence of past identification results,
// most-recent-first, never longer than HistoryCapacity.
type HistoryLog []*MedicineRecord
