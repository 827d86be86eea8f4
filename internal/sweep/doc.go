// Package sweep implements scan registration for a 16-beam spinning LiDAR:
// beam demultiplexing, IMU-based motion de-skew, curvature computation and
// edge/planar feature selection over one revolution of points.
//
// Responsibilities: everything between a raw revolution cloud plus an IMU
// sample stream and the five published clouds (full de-skewed cloud, sharp
// and less-sharp corners, flat and less-flat surfaces) plus the imuTrans
// motion summary.
//
// Dependency rule: sweep may depend on monitoring and units, never on the
// transport subpackages (network, imuserial) or on storage.
package sweep
