// s3-tag-applied - SOC Incident When S3 Tag Applied
// Classify. Verify. Emit.
package main

func main() {
	Execute()
}
