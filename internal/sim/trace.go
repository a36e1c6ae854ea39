package sim

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// TraceRecord is one physics tick as written to CSV.
type TraceRecord struct {
	Tick            uint64  `csv:"tick"`
	Time            float64 `csv:"time"`
	Segment         int     `csv:"segment"`
	X               float64 `csv:"x"`
	Y               float64 `csv:"y"`
	Z               float64 `csv:"z"`
	VX              float64 `csv:"vx"`
	VY              float64 `csv:"vy"`
	VZ              float64 `csv:"vz"`
	Grounded        bool    `csv:"grounded"`
	Crouched        bool    `csv:"crouched"`
	TargetCrouched  bool    `csv:"target_crouched"`
	HalfHeight      float64 `csv:"half_height"`
	BodyYaw         float64 `csv:"body_yaw"`
	HeadYaw         float64 `csv:"head_yaw"`
	AngularVelocity float64 `csv:"angular_velocity"`
}

func NewTraceRecord(tick uint64, t float64, segment int, st Status) TraceRecord {
	return TraceRecord{
		Tick:            tick,
		Time:            t,
		Segment:         segment,
		X:               st.Position.X,
		Y:               st.Position.Y,
		Z:               st.Position.Z,
		VX:              st.Velocity.X,
		VY:              st.Velocity.Y,
		VZ:              st.Velocity.Z,
		Grounded:        st.Grounded,
		Crouched:        st.Crouched,
		TargetCrouched:  st.TargetCrouched,
		HalfHeight:      st.HalfHeight,
		BodyYaw:         st.BodyYaw,
		HeadYaw:         st.HeadYaw,
		AngularVelocity: st.AngularVelocity,
	}
}

// TraceWriter streams records as CSV, writing the header once.
type TraceWriter struct {
	w             io.Writer
	headerWritten bool
}

func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w}
}

func (tw *TraceWriter) Write(records ...TraceRecord) error {
	if tw == nil || len(records) == 0 {
		return nil
	}
	if !tw.headerWritten {
		if err := gocsv.Marshal(records, tw.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		tw.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, tw.w); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}
