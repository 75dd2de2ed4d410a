package ring_buffer

// bufImpl keeps the most recent frames of audio, evicting the oldest
// frame once capacity is reached. Frames are returned oldest-first.
type bufImpl struct {
	frames [][]int16
	head   int
	size   int
}

func New(size int) *bufImpl {
	return &bufImpl{
		frames: make([][]int16, size),
		head:   0,
		size:   0,
	}
}

func (r *bufImpl) Add(frame []int16) {
	if len(r.frames) == 0 {
		return
	}

	r.frames[r.head] = frame
	r.head = (r.head + 1) % len(r.frames)

	if r.size < len(r.frames) {
		r.size++
	}
}

func (r *bufImpl) Len() int {
	return r.size
}

func (r *bufImpl) Read() [][]int16 {
	frames := make([][]int16, 0, r.size)

	start := (r.head - r.size + len(r.frames)) % len(r.frames)
	for i := 0; i < r.size; i++ {
		frames = append(frames, r.frames[(start+i)%len(r.frames)])
	}

	return frames
}

func (r *bufImpl) Clear() {
	for i := range r.frames {
		r.frames[i] = nil
	}

	r.head = 0
	r.size = 0
}
