/*
 * scripts.go, part of msicastep.
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

package castep

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	chem "github.com/rmera/msicastep"
)

// XSDScriptName is the name of the Materials Studio script written by XSDScript.
const XSDScriptName = "msi_to_xsd.pl"

// XSDScript writes a Materials Studio perl script that opens each msi file in Items,
// calculates its bonds and saves it as xsd. Items are paths without the .msi extension,
// as returned by FindMSI. The Model given to Export is not used and can be nil.
type XSDScript struct {
	Items []string
}

// FileName returns msi_to_xsd.pl for any seed.
func (X XSDScript) FileName(seed string) string {
	return XSDScriptName
}

// Export writes the script to w.
func (X XSDScript) Export(w io.Writer, mol *chem.Model) error {
	for _, it := range X.Items {
		if strings.ContainsAny(it, "\"\n") {
			return chem.NewError(chem.ExportError, nil, "castep.XSDScript.Export", "path %q can't go in a perl string", it)
		}
	}
	quoted := make([]string, len(X.Items))
	for i, it := range X.Items {
		quoted[i] = `"` + it + `"`
	}
	out := bufio.NewWriter(w)
	fmt.Fprint(out, "#!perl\nuse strict;\nuse Getopt::Long;\nuse MaterialsScript qw(:all);\n")
	fmt.Fprintf(out, "my @params = (\n%s);\n", strings.Join(quoted, ", "))
	fmt.Fprint(out, `foreach my $item (@params) {
    my $doc = $Documents{"${item}.msi"};
    $doc->CalculateBonds;
    $doc->Export("${item}.xsd");
    $doc->Save;
    $doc->Close;
}`)
	return flush(out, "castep.XSDScript.Export")
}

// LSFJobName is the name of the LSF job script.
const LSFJobName = "MS70_CASTEP.lsf"

// LSFJob writes the job script to run the Materials Studio CASTEP launcher for
// a seed under LSF.
type LSFJob struct {
	Seed      string
	RunCastep string //path to RunCASTEP.sh
	Cores     int
}

// FileName returns MS70_CASTEP.lsf for any seed.
func (J LSFJob) FileName(seed string) string {
	return LSFJobName
}

// Export writes the script. mol is not used.
func (J LSFJob) Export(w io.Writer, mol *chem.Model) error {
	if J.Seed == "" || J.Cores < 1 {
		return chem.NewError(chem.ExportError, nil, "castep.LSFJob.Export", "seed %q, %d cores", J.Seed, J.Cores)
	}
	run := J.RunCastep
	if run == "" {
		run = "RunCASTEP.sh"
	}
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "APP_NAME=intelY_mid\nNP=%d\nNP_PER_NODE=%d\nOMP_NUM_THREADS=1\nRUN=\"RAW\"\n\n", J.Cores, J.Cores)
	fmt.Fprintf(out, "%s -np $NP %s", run, J.Seed)
	return flush(out, "castep.LSFJob.Export")
}

// PBSJobName is the name of the PBS job script.
const PBSJobName = "hpc.pbs.sh"

// PBSJob writes a PBS job script that runs castep.mpi for a seed with mpirun.
type PBSJob struct {
	Seed   string
	Castep string //the CASTEP executable, castep.mpi if empty
	Cores  int
}

// FileName returns hpc.pbs.sh for any seed.
func (J PBSJob) FileName(seed string) string {
	return PBSJobName
}

const pbsBody = `
cd $PBS_O_WORKDIR

NCPU=` + "`wc -l < $PBS_NODEFILE`" + `
NNODES=` + "`uniq $PBS_NODEFILE | wc -l`" + `

echo ------------------------------------------------------
echo ' This job is allocated on '${NCPU}' cpu(s)'
echo 'Job is running on node(s): '
cat $PBS_NODEFILE
echo ------------------------------------------------------
echo PBS: qsub is running on $PBS_O_HOST
echo PBS: originating queue is $PBS_O_QUEUE
echo PBS: executing queue is $PBS_QUEUE
echo PBS: working directory is $PBS_O_WORKDIR
echo PBS: execution mode is $PBS_ENVIRONMENT
echo PBS: job identifier is $PBS_JOBID
echo PBS: job name is $PBS_JOBNAME
echo PBS: node file is $PBS_NODEFILE
echo PBS: number of nodes is $NNODES
echo PBS: current home directory is $PBS_O_HOME
echo PBS: PATH = $PBS_O_PATH
echo ------------------------------------------------------

cat $PBS_NODEFILE >./hostfile
`

// Export writes the script. mol is not used.
func (J PBSJob) Export(w io.Writer, mol *chem.Model) error {
	if J.Seed == "" || J.Cores < 1 {
		return chem.NewError(chem.ExportError, nil, "castep.PBSJob.Export", "seed %q, %d cores", J.Seed, J.Cores)
	}
	exe := J.Castep
	if exe == "" {
		exe = "castep.mpi"
	}
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "#PBS -N %s\n#PBS -q simple_q\n#PBS -l walltime=168:00:00\n#PBS -l nodes=1:ppn=%d\n#PBS -V\n", J.Seed, J.Cores)
	fmt.Fprint(out, pbsBody)
	fmt.Fprintf(out, "mpirun --mca btl ^tcp --hostfile hostfile %s %s\nrm ./hostfile", exe, J.Seed)
	return flush(out, "castep.PBSJob.Export")
}
