package bucket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

// noRightBound marks a still-unbounded search window. The value keeps
// midpoint arithmetic overflow-free while recentering.
const noRightBound = int(^uint(0) >> 2)

// maxRecenterWindow caps the window used when a pointer escapes its bound
// before any server rejection fixed an upper limit.
const maxRecenterWindow = 1 << 20

// PayloadFunc grows a probe request by roughly size units of filler for the
// surface under test: bytes of query, body or cookie, or a number of headers.
type PayloadFunc func(req *models.Request, size int)

// Controller runs the adaptive payload-size search for one (host, surface).
// It probes three candidate sizes per iteration and walks the window toward
// the best observed bytes-per-second rate without crossing the server's
// rejection threshold.
type Controller struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewController creates a Controller that probes through client.
func NewController(client *httpclient.Client, logger zerolog.Logger) *Controller {
	return &Controller{
		client: client,
		logger: logger.With().Str("component", "bucket").Logger(),
	}
}

type outcome int8

const (
	outcomeNone outcome = iota
	outcomeAccepted
	outcomeRejected
)

// OptimalSize searches the payload size maximizing size/latency while the
// server still answers like the baseline. It returns ok=false when no probe
// was ever accepted. The result is floored to minChunk when the window allows
// it.
func (c *Controller) OptimalSize(ctx context.Context, info *models.RequestInfo, minChunk int, addPayload PayloadFunc) (int, bool) {
	left, cur, right := 1024, 2048, 4096
	leftBound, rightBound := 0, noRightBound

	optimalSize := 0
	optimalRate := 0.0

	for iteration := 0; iteration < 5; iteration++ {
		if left == 0 {
			break
		}
		// Indivisible window, nothing left to bisect.
		if right-cur < 2 || cur-left < 2 {
			break
		}

		sizes := [3]int{left, cur, right}
		responses := c.probeSizes(ctx, info, sizes, addPayload)

		var outcomes [3]outcome
		var rates [3]float64
		accepted := 0
		for i, resp := range responses {
			outcomes[i] = c.classify(info, resp)
			if outcomes[i] == outcomeAccepted {
				accepted++
				if secs := resp.Elapsed.Seconds(); secs > 0 {
					rates[i] = float64(sizes[i]) / secs
				}
				if rates[i] > optimalRate {
					optimalRate = rates[i]
					optimalSize = sizes[i]
				}
			}
		}

		c.logger.Debug().
			Str("netloc", info.Netloc).
			Ints("sizes", sizes[:]).
			Floats64("rates", rates[:]).
			Int("optimal", optimalSize).
			Msg("Bucket sizing iteration")

		// Nothing accepted: the whole window is beyond what the server (or
		// the network) tolerates, binary search to the left.
		if accepted == 0 {
			rightBound = left
			right = rightBound
			cur = right >> 1
			left = cur >> 1
			continue
		}

		maxRate := rates[0]
		for _, r := range rates[1:] {
			if r > maxRate {
				maxRate = r
			}
		}

		switch {
		case accepted == 3:
			switch {
			case rates[0] == maxRate:
				// Throughput peaks on the small side.
				rightBound = right
				left, cur, right = shiftLeft(left)
				if left < leftBound {
					left, cur, right = recenter(leftBound, rightBound)
				}
			case rates[2] == maxRate:
				// Throughput still climbing, chase it upward.
				leftBound = left
				left, cur, right = shiftRight(right)
				if right > rightBound {
					left, cur, right = recenter(leftBound, rightBound)
				}
			default:
				// The middle wins, narrow around it.
				if left > leftBound {
					leftBound = left
				}
				if right < rightBound {
					rightBound = right
				}
				left = (left + cur) / 2
				right = (cur + right) / 2
			}

		case outcomes[0] == outcomeAccepted && outcomes[1] != outcomeAccepted && outcomes[2] != outcomeAccepted:
			// The window collapsed from the right.
			if cur < rightBound {
				rightBound = cur
			}
			left, cur, right = shiftLeft(left)
			if left < leftBound {
				left, cur, right = recenter(leftBound, rightBound)
			}

		case outcomes[0] == outcomeAccepted && outcomes[1] == outcomeAccepted && outcomes[2] != outcomeAccepted:
			if right < rightBound {
				rightBound = right
			}
			if rates[0] == maxRate {
				left, cur, right = shiftLeft(left)
				if left < leftBound {
					left, cur, right = recenter(leftBound, rightBound)
				}
			} else {
				right = (cur + right) / 2
				left = (left + cur) / 2
			}

		default:
			left, cur, right = shiftLeft(left)
			if left < leftBound {
				left, cur, right = recenter(leftBound, rightBound)
			}
		}
	}

	if optimalSize == 0 {
		return 0, false
	}
	if optimalSize < minChunk && minChunk < rightBound {
		return minChunk, true
	}
	return optimalSize, true
}

// probeSizes sends the three sized probes concurrently.
func (c *Controller) probeSizes(ctx context.Context, info *models.RequestInfo, sizes [3]int, addPayload PayloadFunc) [3]*models.Response {
	var responses [3]*models.Response
	var wg sync.WaitGroup
	for i, size := range sizes {
		wg.Add(1)
		go func(i, size int) {
			defer wg.Done()
			req := info.Request.Clone()
			addPayload(req, size)
			responses[i] = c.client.DoWithRetry(ctx, req)
		}(i, size)
	}
	wg.Wait()
	return responses
}

// classify grades one sizing probe. Only explicit size rejections and
// unexpected error classes count against the candidate; anything else is
// accepted so oddball servers do not stall the search.
func (c *Controller) classify(info *models.RequestInfo, resp *models.Response) outcome {
	if resp == nil {
		return outcomeNone
	}
	if resp.StatusCode == info.Baseline.StatusCode {
		return outcomeAccepted
	}
	switch resp.StatusCode {
	case 413, 414, 431:
		return outcomeRejected
	}
	if resp.StatusCode >= 400 && info.Baseline.StatusCode < 400 {
		return outcomeRejected
	}
	c.logger.Debug().
		Str("netloc", info.Netloc).
		Int("status", resp.StatusCode).
		Int("baseline_status", info.Baseline.StatusCode).
		Msg("Unexpected status during bucket sizing, treating as accepted")
	return outcomeAccepted
}

func shiftLeft(left int) (int, int, int) {
	right := left - 1
	cur := right >> 1
	return cur >> 1, cur, right
}

func shiftRight(right int) (int, int, int) {
	left := right + 1
	cur := left << 1
	return left, cur, cur << 1
}

// recenter recomputes the probe triple inside the current bounds after a
// pointer escaped them.
func recenter(leftBound, rightBound int) (int, int, int) {
	if rightBound == noRightBound {
		rightBound = leftBound + maxRecenterWindow
	}
	cur := leftBound + (rightBound-leftBound)/2
	left := leftBound + (cur-leftBound)/2
	right := cur + (rightBound-cur)/2
	return left, cur, right
}
