package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitor(t *testing.T) {
	m := NewMonitor()
	assert.False(t, m.Status().Degraded)

	var got []Degraded
	unsubscribe := m.Subscribe(func(ev Degraded) { got = append(got, ev) })

	m.ReportDegraded(Degraded{Method: "POST", Path: "/payments", Status: 503})
	st := m.Status()
	assert.True(t, st.Degraded)
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, 503, st.Last.Status)
	assert.Len(t, got, 1)

	unsubscribe()
	m.ReportDegraded(Degraded{Method: "DELETE", Path: "/plans/1", Status: 500})
	assert.Len(t, got, 1)
	assert.Equal(t, 2, m.Status().Count)

	m.Clear()
	assert.False(t, m.Status().Degraded)
	assert.Equal(t, "/plans/1", m.Status().Last.Path)
}
