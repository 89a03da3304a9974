package services

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/sirupsen/logrus"
)

const (
	pageCaptureServiceName = "PageCaptureService"
	capturedSelector       = "#gainers-body"
	defaultCaptureTimeout  = 45 * time.Second
	captureQuality         = 100
)

// PageCaptureService renders a page in headless Chrome and screenshots it
type PageCaptureService struct {
	userAgent string
	timeout   time.Duration
	logger    *logrus.Entry
}

func NewPageCaptureService(userAgent string, timeout time.Duration) *PageCaptureService {
	if timeout <= 0 {
		timeout = defaultCaptureTimeout
	}
	return &PageCaptureService{
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logrus.WithField("component", pageCaptureServiceName),
	}
}

// Capture loads url and returns a full-page PNG once the movers table is visible
func (s *PageCaptureService) Capture(ctx context.Context, url string) ([]byte, error) {
	startTime := time.Now()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(s.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, s.timeout)
	defer cancelTimeout()

	var screenshot []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(1440, 900),
		chromedp.Navigate(url),
		chromedp.WaitVisible(capturedSelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&screenshot, captureQuality),
	)
	if err != nil {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryRendering,
			"CAPTURE_FAILED",
			"failed to capture dashboard page: "+err.Error(),
			pageCaptureServiceName,
			"capture",
			true,
			err,
		)
	}

	s.logger.WithFields(logrus.Fields{
		"url":      url,
		"bytes":    len(screenshot),
		"duration": time.Since(startTime),
	}).Info("Captured dashboard page")

	return screenshot, nil
}
