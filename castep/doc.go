/*
 * doc.go, part of msicastep.
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
Package castep writes the input of CASTEP calculations for a chem.Model, in the same
layout Materials Studio uses.

A seed is a directory, <name>_opt, holding the files for a geometry optimization
(name.cell, name.param and their .kptaux and .trjaux companions) and, if asked for, those
for a band structure calculation on the same structure (name_DOS.cell and so on), plus the
LSF and PBS job scripts and a copy of the structure in MSI format. Each file is produced by
one chem.Exporter, and Seed.Write runs all of them concurrently.

The calculation settings come from a Config, usually read from a TOML file. Settings with
the CASTEP/ prefix in the model itself take precedence over the Config, see
CastepConfig.WithModel.
*/
package castep
