/*
 * doc.go, part of goewald.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*
Package snap reads and writes compressed system snapshots: everything a
long-range electrostatics evaluation needs for one configuration, in one
file. That is the coordinates, one or two charge sets, the square-root
dispersion coefficients (when dispersion is Ewald-split), the exclusion
list and the box.

The format is line-oriented text under a general-purpose compressor. The
compressor is picked from the last letter of the filename: 'z' means gzip,
'r' means raw DEFLATE, and anything else (the recommended ".snp" suffix
included) means zstd. Numbers are written with enough digits to roundtrip
exactly, so a snapshot can carry regression baselines.
*/
package snap
