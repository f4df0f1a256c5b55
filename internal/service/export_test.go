package service

import "time"

func (s *ResetService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TaskService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *AccountService) DummyHash() []byte {
	return s.dummyHash
}
