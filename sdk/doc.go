// Package sdk is a thin programmatic wrapper over the Revyl CLI binary.
//
// Runner executes subcommands with captured output and optional JSON
// decoding; DeviceClient layers the `revyl device` subcommand grammar on
// top of it, tracking the current session index as explicit state on the
// client value.
//
//	runner, err := sdk.NewRunner(ctx)
//	if err != nil {
//	    return err
//	}
//	device := sdk.NewDeviceClient(runner)
//	if _, err := device.StartSession(ctx, sdk.StartOptions{Platform: "ios"}); err != nil {
//	    return err
//	}
//	defer device.Close()
//	_, err = device.Tap(ctx, sdk.TargetLabel("Sign In button"))
package sdk
