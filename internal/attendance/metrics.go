package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var marksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attendance_marks_total",
	Help: "Attendance marks recorded, by status and verification method.",
}, []string{"status", "method"})
