package fetch

import (
	"net/url"
	"strings"
)

// Platform is a recognised job board.
type Platform string

// Known job boards
const (
	PlatformBoss    Platform = "zhipin"
	PlatformLagou   Platform = "lagou"
	PlatformLiepin  Platform = "liepin"
	PlatformZhaopin Platform = "zhaopin"
	PlatformJob51   Platform = "51job"
	PlatformUnknown Platform = "unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"zhipin.com", PlatformBoss},
	{"lagou.com", PlatformLagou},
	{"liepin.com", PlatformLiepin},
	{"zhaopin.com", PlatformZhaopin},
	{"51job.com", PlatformJob51},
}

// DetectPlatform identifies the job board from a URL's host.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range platformHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.platform
		}
	}
	return PlatformUnknown
}

// RendersClientSide reports whether a board serves its posting body from
// JavaScript, so a plain HTTP fetch rarely contains it.
func (p Platform) RendersClientSide() bool {
	return p == PlatformBoss || p == PlatformLiepin
}

// PlatformContentSelectors returns the posting body selectors for a board,
// most specific first.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformBoss:
		return []string{".job-detail-section", ".job-sec-text", ".job-detail", ".job-box"}
	case PlatformLagou:
		return []string{"#job_detail", ".job-detail", ".job_bt", ".position-content"}
	case PlatformLiepin:
		return []string{".job-intro-container", "[data-selector='job-intro-content']", ".job-description", ".job-item"}
	case PlatformZhaopin:
		return []string{".describtion", ".describtion__detail-content", ".job-detail", ".pos-ul"}
	case PlatformJob51:
		return []string{".tCompany_main", ".bmsg.job_msg", ".job_msg"}
	default:
		return JobPostingSelectors()
	}
}

// PlatformNoiseSelectors returns elements to strip before extracting text.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".login-dialog",
		".download-app",
		".qrcode",
		".share",
		".cookie-banner",
		".recommend-list",
		".similar-jobs",
	}

	switch platform {
	case PlatformBoss:
		return append(common, ".job-sider", ".sider-company", ".job-boss-info", ".boss-info-attr")
	case PlatformLagou:
		return append(common, ".job_company", ".position_link", "#container_right")
	case PlatformLiepin:
		return append(common, ".company-info-container", ".side-container", ".apply-btn-container")
	case PlatformZhaopin:
		return append(common, ".company", ".job-apply", ".recommend")
	case PlatformJob51:
		return append(common, ".tCompany_sidebar", ".com_msg")
	default:
		return common
	}
}
