// Package lib groups integrations that do not belong to a single layer:
// background job processing on Redis/Asynq and the Resend email client.
package lib
