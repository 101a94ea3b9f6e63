package usecase

// DiffFields is exported for testing
var DiffFields = diffFields

// DigestOf is exported for testing
var DigestOf = digestOf

// DecodeDocuments is exported for testing
var DecodeDocuments = decodeDocuments

// LockCount returns the number of configurations holding a run lock
func (uc *SyncUseCase) LockCount() int {
	n := 0
	uc.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
