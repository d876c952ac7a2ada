package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	u := &Uploader{Bucket: "portal-media", Region: "ap-southeast-1"}
	assert.Equal(t, "https://portal-media.s3.ap-southeast-1.amazonaws.com/accomplishment/r1/a.jpg", u.URL("accomplishment/r1/a.jpg"))

	u.CloudFrontDomain = "cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/accomplishment/r1/a.jpg", u.URL("accomplishment/r1/a.jpg"))
}
