package fetch

// DetectionStrategy decides whether origin can sense target within radius.
type DetectionStrategy interface {
	Detect(target, origin *Entity, radius float64) bool
}

// RadiusDetection senses anything closer than the radius.
type RadiusDetection struct{}

func (RadiusDetection) Detect(target, origin *Entity, radius float64) bool {
	return target.Pos.Dist(origin.Pos) < radius
}

// ConeDetection senses targets closer than the radius and within Angle
// degrees, centred on the origin's heading.
type ConeDetection struct {
	Angle float64
}

func (c ConeDetection) Detect(target, origin *Entity, radius float64) bool {
	dir := target.Pos.Sub(origin.Pos)
	return dir.Len() < radius && Angle(dir, origin.Forward) < c.Angle/2
}

// ObjectDetector senses one target from an origin entity. A detection holds
// for the cooldown, during which the strategy is not consulted again.
type ObjectDetector struct {
	Target *Entity
	Origin *Entity

	strategy  DetectionStrategy
	radius    float64
	cooldown  float64
	remaining float64
}

// NewObjectDetector returns a detector using strategy, or RadiusDetection
// when strategy is nil.
func NewObjectDetector(origin, target *Entity, radius, cooldown float64, strategy DetectionStrategy) *ObjectDetector {
	if strategy == nil {
		strategy = RadiusDetection{}
	}
	return &ObjectDetector{
		Target:   target,
		Origin:   origin,
		strategy: strategy,
		radius:   radius,
		cooldown: cooldown,
	}
}

// Tick advances the cooldown timer by dt seconds.
func (d *ObjectDetector) Tick(dt float64) {
	if d.remaining > 0 {
		d.remaining -= dt
	}
}

// CanDetect reports whether the target is sensed, starting the cooldown on a
// fresh detection.
func (d *ObjectDetector) CanDetect() bool {
	if d.remaining > 0 {
		return true
	}
	if !d.strategy.Detect(d.Target, d.Origin, d.radius) {
		return false
	}
	d.remaining = d.cooldown
	return true
}

func (d *ObjectDetector) Radius() float64 { return d.radius }

func (d *ObjectDetector) SetRadius(r float64) { d.radius = r }

func (d *ObjectDetector) SetStrategy(s DetectionStrategy) { d.strategy = s }
