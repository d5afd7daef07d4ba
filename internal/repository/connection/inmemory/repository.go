package inmemory

import (
	"sync"

	"github.com/crossparty/server/internal/repository/connection"
	"github.com/crossparty/server/pkg/wsrouter"
)

type repo struct {
	connList map[*wsrouter.Conn]string
	idList   map[string]*wsrouter.Conn
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*wsrouter.Conn]string),
		idList:   make(map[string]*wsrouter.Conn),
	}
}

func (r *repo) Add(conn *wsrouter.Conn, participantId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[participantId] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = participantId
	r.idList[participantId] = conn

	return nil
}

func (r *repo) RemoveByConn(conn *wsrouter.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	participantId, ok := r.connList[conn]
	if !ok {
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, participantId)

	return nil
}

func (r *repo) RemoveByParticipantId(participantId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[participantId]
	if !ok {
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, participantId)

	return nil
}

func (r *repo) GetParticipantId(conn *wsrouter.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	participantId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return participantId, nil
}

func (r *repo) GetConn(participantId string) (*wsrouter.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[participantId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}
