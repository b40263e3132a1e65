package transport

import "time"

// mockConn implements wsConnection. Grounded on the teacher's MockConnection
// func-field pattern (transport/mocks_test.go), extended with the two
// methods this package's narrower interface adds.
type mockConn struct {
	ReadMessageFunc    func() (int, []byte, error)
	WriteMessageFunc   func(int, []byte) error
	WriteControlFunc   func(int, []byte, time.Time) error
	CloseFunc          func() error
	SetReadLimitFunc   func(int64)
	writes             [][]byte
	controlCode        int
	controlData        []byte
	closeCalls         int
	setReadLimitCalled bool
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	if m.ReadMessageFunc != nil {
		return m.ReadMessageFunc()
	}
	return 0, nil, nil
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	m.writes = append(m.writes, data)
	if m.WriteMessageFunc != nil {
		return m.WriteMessageFunc(messageType, data)
	}
	return nil
}

func (m *mockConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	m.controlCode = messageType
	m.controlData = data
	if m.WriteControlFunc != nil {
		return m.WriteControlFunc(messageType, data, deadline)
	}
	return nil
}

func (m *mockConn) Close() error {
	m.closeCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *mockConn) SetReadLimit(limit int64) {
	m.setReadLimitCalled = true
	if m.SetReadLimitFunc != nil {
		m.SetReadLimitFunc(limit)
	}
}
